package liveness

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/orm"
)

const (
	maxProofData   = 1024
	maxTreeRouting = 256
)

var rootKey = []byte("current")

// Root is the published registry root.
type Root struct {
	Metadata *weave.Metadata `json:"metadata"`
	Root     weave.HexBytes  `json:"root"`
	// Height and SetAt describe the block in which the root was published.
	Height int64          `json:"height"`
	SetAt  weave.UnixTime `json:"set_at"`
}

var _ orm.Model = (*Root)(nil)

func (r *Root) Marshal() ([]byte, error) { return weave.EncodeBinary(r) }

func (r *Root) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, r) }

// Validate ensures the root is a digest.
func (r *Root) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	if len(r.Root) != DigestSize {
		errs = errors.Append(errs, errors.Field("Root", errors.ErrInput, "must be %d bytes", DigestSize))
	}
	if r.Height < 0 {
		errs = errors.Append(errs, errors.Field("Height", errors.ErrInput, "negative"))
	}
	errs = errors.AppendField(errs, "SetAt", r.SetAt.Validate())
	return errs
}

// NewRootBucket returns the singleton bucket of the published root.
func NewRootBucket() orm.ModelBucket {
	return orm.NewModelBucket("liveroot", &Root{})
}

// Attestation is an advisory compressed liveness record. It is never read
// by the escrow state machine.
type Attestation struct {
	Metadata    *weave.Metadata `json:"metadata"`
	Testator    weave.Address   `json:"testator"`
	Payer       weave.Address   `json:"payer"`
	Leaf        weave.HexBytes  `json:"leaf"`
	ProofData   []byte          `json:"proof_data"`
	TreeRouting []byte          `json:"tree_routing"`
	OutputIndex uint32          `json:"output_index"`
	CreatedAt   weave.UnixTime  `json:"created_at"`
}

var _ orm.Model = (*Attestation)(nil)

func (a *Attestation) Marshal() ([]byte, error) { return weave.EncodeBinary(a) }

func (a *Attestation) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, a) }

func (a *Attestation) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", a.Metadata.Validate())
	errs = errors.AppendField(errs, "Testator", a.Testator.Validate())
	errs = errors.AppendField(errs, "Payer", a.Payer.Validate())
	if len(a.Leaf) != DigestSize {
		errs = errors.Append(errs, errors.Field("Leaf", errors.ErrInput, "must be %d bytes", DigestSize))
	}
	errs = errors.AppendField(errs, "ProofData", validateProofData(a.ProofData, a.TreeRouting))
	errs = errors.AppendField(errs, "CreatedAt", a.CreatedAt.Validate())
	return errs
}

func validateProofData(data, routing []byte) error {
	switch {
	case len(data) == 0:
		return errors.Wrap(errors.ErrEmpty, "proof data")
	case len(data) > maxProofData:
		return errors.Wrapf(errors.ErrInput, "proof data longer than %d", maxProofData)
	case len(routing) > maxTreeRouting:
		return errors.Wrapf(errors.ErrInput, "tree routing longer than %d", maxTreeRouting)
	}
	return nil
}

func attestationTestator(obj orm.Object) ([]byte, error) {
	a, ok := obj.Value().(*Attestation)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return a.Testator, nil
}

// NewAttestationBucket returns the bucket of advisory attestations, indexed
// by testator.
func NewAttestationBucket() orm.ModelBucket {
	return orm.NewModelBucket("attest", &Attestation{},
		orm.WithIndex("testator", attestationTestator, false))
}
