package liveness

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

var (
	_ weave.Msg = (*SetRootMsg)(nil)
	_ weave.Msg = (*CreateCompressedLivenessMsg)(nil)
	_ weave.Msg = (*UpdateConfigurationMsg)(nil)
)

// SetRootMsg publishes a new registry root.
type SetRootMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Root     weave.HexBytes  `json:"root"`
}

func (SetRootMsg) Path() string { return "liveness/set_root" }

func (m *SetRootMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *SetRootMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *SetRootMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Root) != DigestSize {
		errs = errors.Append(errs, errors.Field("Root", errors.ErrInput, "must be %d bytes", DigestSize))
	}
	return errs
}

// CreateCompressedLivenessMsg requests an advisory liveness attestation.
// Testator and Payer default to the main signer.
type CreateCompressedLivenessMsg struct {
	Metadata    *weave.Metadata `json:"metadata"`
	Testator    weave.Address   `json:"testator"`
	Payer       weave.Address   `json:"payer"`
	ProofData   []byte          `json:"proof_data"`
	TreeRouting []byte          `json:"tree_routing"`
	OutputIndex uint32          `json:"output_index"`
}

func (CreateCompressedLivenessMsg) Path() string { return "liveness/create_compressed" }

func (m *CreateCompressedLivenessMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *CreateCompressedLivenessMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *CreateCompressedLivenessMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Testator != nil {
		errs = errors.AppendField(errs, "Testator", m.Testator.Validate())
	}
	if m.Payer != nil {
		errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	}
	errs = errors.AppendField(errs, "ProofData", validateProofData(m.ProofData, m.TreeRouting))
	return errs
}

// UpdateConfigurationMsg patches the registry configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string { return "liveness/update_configuration" }

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *UpdateConfigurationMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}
