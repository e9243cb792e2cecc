package escrow

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/x/liveness"
)

const maxProofLength = 64

var (
	_ weave.Msg = (*CreateMsg)(nil)
	_ weave.Msg = (*RefreshLivenessMsg)(nil)
	_ weave.Msg = (*ExecuteMsg)(nil)
	_ weave.Msg = (*CancelMsg)(nil)
	_ weave.Msg = (*UpdateConfigurationMsg)(nil)
)

// CreateMsg opens an escrow. Testator defaults to the main signer, Payer
// defaults to the testator.
type CreateMsg struct {
	Metadata             *weave.Metadata    `json:"metadata"`
	Testator             weave.Address      `json:"testator"`
	Payer                weave.Address      `json:"payer"`
	Beneficiary          weave.Address      `json:"beneficiary"`
	Verifier             weave.Address      `json:"verifier"`
	IdentityHash         weave.HexBytes     `json:"identity_hash"`
	EmailHash            weave.HexBytes     `json:"email_hash"`
	DocumentIDHash       weave.HexBytes     `json:"document_id_hash"`
	ContentID            []byte             `json:"content_id"`
	ContentIDValidator   []byte             `json:"content_id_validator"`
	WarningTimeout       weave.UnixDuration `json:"warning_timeout"`
	TotalTimeout         weave.UnixDuration `json:"total_timeout"`
	Deposit              *coin.Coin         `json:"deposit"`
	EncryptedSecret      []byte             `json:"encrypted_secret"`
	UnwrappedKeyMaterial []byte             `json:"unwrapped_key_material"`
	DebugMode            bool               `json:"debug_mode"`
}

func (CreateMsg) Path() string { return "escrow/create" }

func (m *CreateMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *CreateMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Testator", validateOptionalAddress(m.Testator))
	errs = errors.AppendField(errs, "Payer", validateOptionalAddress(m.Payer))
	errs = errors.AppendField(errs, "Beneficiary", m.Beneficiary.Validate())
	errs = errors.AppendField(errs, "Verifier", m.Verifier.Validate())
	errs = errors.AppendField(errs, "IdentityHash", validateDigest(m.IdentityHash, false))
	errs = errors.AppendField(errs, "EmailHash", validateDigest(m.EmailHash, false))
	errs = errors.AppendField(errs, "DocumentIDHash", validateDigest(m.DocumentIDHash, false))
	errs = errors.AppendField(errs, "ContentID", validateContentID(m.ContentID))
	errs = errors.AppendField(errs, "ContentIDValidator", validateContentID(m.ContentIDValidator))
	errs = errors.AppendField(errs, "TotalTimeout", validateTimeouts(m.WarningTimeout, m.TotalTimeout))
	errs = errors.AppendField(errs, "Deposit", validateAmount(m.Deposit))
	if len(m.Verifier) != 0 && m.Verifier.Equals(m.Beneficiary) {
		errs = errors.Append(errs, errors.Field("Verifier", errors.ErrInput, "must differ from beneficiary"))
	}
	if len(m.EncryptedSecret) > MaxSecretSize {
		errs = errors.Append(errs, errors.Field("EncryptedSecret", errors.ErrInput, "longer than %d", MaxSecretSize))
	}
	if len(m.UnwrappedKeyMaterial) != keyMaterialSize {
		errs = errors.Append(errs, errors.Field("UnwrappedKeyMaterial", errors.ErrInput, "must be %d bytes", keyMaterialSize))
	}
	return errs
}

// RefreshLivenessMsg proves that the testator is alive.
//
// Root and Commitment are optional. A missing root keeps the stored one.
// Proof elements are 32 bytes each. ProofIndex and ProofTotal locate the
// leaf in the registry tree and are only used by production chains.
type RefreshLivenessMsg struct {
	Metadata    *weave.Metadata  `json:"metadata"`
	Testator    weave.Address    `json:"testator"`
	Beneficiary weave.Address    `json:"beneficiary"`
	Root        weave.HexBytes   `json:"root"`
	Commitment  weave.HexBytes   `json:"commitment"`
	Proof       []weave.HexBytes `json:"proof"`
	ProofIndex  int64            `json:"proof_index"`
	ProofTotal  int64            `json:"proof_total"`
}

func (RefreshLivenessMsg) Path() string { return "escrow/refresh_liveness" }

func (m *RefreshLivenessMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *RefreshLivenessMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *RefreshLivenessMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Testator", validateOptionalAddress(m.Testator))
	errs = errors.AppendField(errs, "Beneficiary", m.Beneficiary.Validate())
	errs = errors.AppendField(errs, "Root", validateDigest(m.Root, true))
	errs = errors.AppendField(errs, "Commitment", validateDigest(m.Commitment, true))
	if len(m.Proof) > maxProofLength {
		errs = errors.Append(errs, errors.Field("Proof", errors.ErrInput, "more than %d elements", maxProofLength))
	}
	for _, p := range m.Proof {
		if len(p) != liveness.DigestSize {
			errs = errors.Append(errs, errors.Field("Proof", errors.ErrInput, "element must be %d bytes", liveness.DigestSize))
			break
		}
	}
	if m.ProofIndex < 0 || m.ProofTotal < 0 {
		errs = errors.Append(errs, errors.Field("ProofIndex", errors.ErrInput, "negative"))
	}
	return errs
}

func (m *RefreshLivenessMsg) claim() Claim {
	proof := make([][]byte, len(m.Proof))
	for i, p := range m.Proof {
		proof[i] = p
	}
	return Claim{
		Root:  m.Root,
		Proof: proof,
		Index: m.ProofIndex,
		Total: m.ProofTotal,
	}
}

// ExecuteMsg releases the escrow to the beneficiary. It must be signed by
// both the beneficiary and the verifier.
type ExecuteMsg struct {
	Metadata      *weave.Metadata `json:"metadata"`
	Testator      weave.Address   `json:"testator"`
	Beneficiary   weave.Address   `json:"beneficiary"`
	Verifier      weave.Address   `json:"verifier"`
	TransferFunds bool            `json:"transfer_funds"`
}

func (ExecuteMsg) Path() string { return "escrow/execute" }

func (m *ExecuteMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *ExecuteMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Testator", m.Testator.Validate())
	errs = errors.AppendField(errs, "Beneficiary", m.Beneficiary.Validate())
	errs = errors.AppendField(errs, "Verifier", m.Verifier.Validate())
	return errs
}

// CancelMsg closes an escrow before execution. Testator defaults to the
// main signer.
type CancelMsg struct {
	Metadata    *weave.Metadata `json:"metadata"`
	Testator    weave.Address   `json:"testator"`
	Beneficiary weave.Address   `json:"beneficiary"`
}

func (CancelMsg) Path() string { return "escrow/cancel" }

func (m *CancelMsg) Marshal() ([]byte, error) { return weave.EncodeBinary(m) }

func (m *CancelMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }

func (m *CancelMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Testator", validateOptionalAddress(m.Testator))
	errs = errors.AppendField(errs, "Beneficiary", m.Beneficiary.Validate())
	return errs
}

// UpdateConfigurationMsg patches the escrow configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string { return "escrow/update_configuration" }

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

func validateOptionalAddress(a weave.Address) error {
	if len(a) == 0 {
		return nil
	}
	return a.Validate()
}
