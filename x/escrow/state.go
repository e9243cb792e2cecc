package escrow

import "github.com/lastwill-labs/weave"

// State is the display state of a record. It is derived from the block time
// and never stored.
type State string

const (
	StateActive    State = "Active"
	StateWarning   State = "Warning"
	StateClaimable State = "Claimable"
	StateExecuted  State = "Executed"
)

// DisplayState returns the state of the record at given time. Only the
// transition to Claimable is enforced, by the execute operation.
func DisplayState(r *Record, now weave.UnixTime) State {
	if r.Executed {
		return StateExecuted
	}
	elapsed := now.Sub(r.LastLivenessAt)
	switch {
	case elapsed <= r.WarningTimeout:
		return StateActive
	case elapsed <= r.TotalTimeout:
		return StateWarning
	default:
		return StateClaimable
	}
}
