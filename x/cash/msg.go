package cash

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
)

var _ weave.Msg = (*SendMsg)(nil)

const (
	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg requests a transfer of coins between two accounts.
type SendMsg struct {
	Metadata    *weave.Metadata `json:"metadata"`
	Source      weave.Address   `json:"source"`
	Destination weave.Address   `json:"destination"`
	Amount      *coin.Coin      `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
}

// Path returns the routing path for this message.
func (SendMsg) Path() string {
	return "cash/send"
}

// Marshal serializes the message.
func (s *SendMsg) Marshal() ([]byte, error) {
	return weave.EncodeBinary(s)
}

// Unmarshal loads the message from its binary form.
func (s *SendMsg) Unmarshal(bz []byte) error {
	return weave.DecodeBinary(bz, s)
}

// Validate makes sure that this is sensible.
func (s *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	if coin.IsEmpty(s.Amount) || !s.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "non-positive amount"))
	} else {
		errs = errors.AppendField(errs, "Amount", s.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", s.Source.Validate())
	errs = errors.AppendField(errs, "Destination", s.Destination.Validate())
	if len(s.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Field("Memo", errors.ErrInput, "memo too long"))
	}
	return errs
}
