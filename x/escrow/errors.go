package escrow

import "github.com/lastwill-labs/weave/errors"

// Errors returned by the escrow state machine. Each kind carries a stable
// ABCI code.
var (
	ErrAlreadyExists = errors.ErrDuplicate
	ErrUnauthorized  = errors.ErrUnauthorized

	ErrInvalidVerifier      = errors.Register(1000, "invalid verifier")
	ErrInvalidLivenessRoot  = errors.Register(1001, "invalid liveness root")
	ErrTransitionNotAllowed = errors.Register(1002, "still alive")
	ErrAlreadyExecuted      = errors.Register(1003, "already executed")
	ErrNoAssets             = errors.Register(1004, "no assets")
)
