package app

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/x/cash"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/lastwill-labs/weave/x/sigs"
)

// Tx carries exactly one message together with the signatures that
// authorize it. Unused message fields stay nil.
type Tx struct {
	Signatures []*sigs.StdSignature `json:"signatures"`

	SendMsg                        *cash.SendMsg                         `json:"send_msg,omitempty"`
	CreateEscrowMsg                *escrow.CreateMsg                     `json:"create_escrow_msg,omitempty"`
	RefreshLivenessMsg             *escrow.RefreshLivenessMsg            `json:"refresh_liveness_msg,omitempty"`
	ExecuteEscrowMsg               *escrow.ExecuteMsg                    `json:"execute_escrow_msg,omitempty"`
	CancelEscrowMsg                *escrow.CancelMsg                     `json:"cancel_escrow_msg,omitempty"`
	UpdateEscrowConfigurationMsg   *escrow.UpdateConfigurationMsg        `json:"update_escrow_configuration_msg,omitempty"`
	SetLivenessRootMsg             *liveness.SetRootMsg                  `json:"set_liveness_root_msg,omitempty"`
	CreateCompressedLivenessMsg    *liveness.CreateCompressedLivenessMsg `json:"create_compressed_liveness_msg,omitempty"`
	UpdateLivenessConfigurationMsg *liveness.UpdateConfigurationMsg      `json:"update_liveness_configuration_msg,omitempty"`
}

var _ weave.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it.
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// NewTx wraps the given message into a transaction.
func NewTx(msg weave.Msg) (*Tx, error) {
	tx := new(Tx)
	if err := tx.SetMsg(msg); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) Marshal() ([]byte, error) { return weave.EncodeBinary(tx) }

func (tx *Tx) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, tx) }

// GetMsg returns the single message set on this transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	var msgs []weave.Msg
	add := func(present bool, m weave.Msg) {
		if present {
			msgs = append(msgs, m)
		}
	}
	add(tx.SendMsg != nil, tx.SendMsg)
	add(tx.CreateEscrowMsg != nil, tx.CreateEscrowMsg)
	add(tx.RefreshLivenessMsg != nil, tx.RefreshLivenessMsg)
	add(tx.ExecuteEscrowMsg != nil, tx.ExecuteEscrowMsg)
	add(tx.CancelEscrowMsg != nil, tx.CancelEscrowMsg)
	add(tx.UpdateEscrowConfigurationMsg != nil, tx.UpdateEscrowConfigurationMsg)
	add(tx.SetLivenessRootMsg != nil, tx.SetLivenessRootMsg)
	add(tx.CreateCompressedLivenessMsg != nil, tx.CreateCompressedLivenessMsg)
	add(tx.UpdateLivenessConfigurationMsg != nil, tx.UpdateLivenessConfigurationMsg)

	switch len(msgs) {
	case 0:
		return nil, errors.Wrap(errors.ErrState, "no message")
	case 1:
		return msgs[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "%d messages in one transaction", len(msgs))
	}
}

// SetMsg sets the message field matching the type of msg. All other
// message fields are cleared.
func (tx *Tx) SetMsg(msg weave.Msg) error {
	signatures := tx.Signatures
	*tx = Tx{Signatures: signatures}

	switch m := msg.(type) {
	case *cash.SendMsg:
		tx.SendMsg = m
	case *escrow.CreateMsg:
		tx.CreateEscrowMsg = m
	case *escrow.RefreshLivenessMsg:
		tx.RefreshLivenessMsg = m
	case *escrow.ExecuteMsg:
		tx.ExecuteEscrowMsg = m
	case *escrow.CancelMsg:
		tx.CancelEscrowMsg = m
	case *escrow.UpdateConfigurationMsg:
		tx.UpdateEscrowConfigurationMsg = m
	case *liveness.SetRootMsg:
		tx.SetLivenessRootMsg = m
	case *liveness.CreateCompressedLivenessMsg:
		tx.CreateCompressedLivenessMsg = m
	case *liveness.UpdateConfigurationMsg:
		tx.UpdateLivenessConfigurationMsg = m
	default:
		return errors.Wrapf(errors.ErrType, "unsupported message %T", msg)
	}
	return nil
}

// GetSignatures returns the signatures on the tx.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the canonical byte representation of the message.
// Used to generate a signature.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset signatures, as they are not part of the signed
	// content
	signatures := tx.Signatures
	tx.Signatures = nil
	bz, err := tx.Marshal()
	tx.Signatures = signatures
	return bz, err
}
