package liveness

import (
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/gconf"
	"github.com/lastwill-labs/weave/orm"
	"github.com/lastwill-labs/weave/x"
)

const (
	setRootCost     int64 = 50
	attestationCost int64 = 100
)

// attestationSpace namespaces the deterministic attestation identifiers.
var attestationSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("lastwill/liveness/attestation"))

// RegisterRoutes registers all handlers of the registry.
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r.Handle(SetRootMsg{}.Path(), NewSetRootHandler(auth))
	r.Handle(CreateCompressedLivenessMsg{}.Path(), NewCreateCompressedLivenessHandler(auth))
	r.Handle(UpdateConfigurationMsg{}.Path(), gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth))
}

// RegisterQuery exposes the root as "/liveness/root" and the attestations
// as "/liveness/attestations".
func RegisterQuery(qr weave.QueryRouter) {
	NewRootBucket().Register("liveness/root", qr)
	NewAttestationBucket().Register("liveness/attestations", qr)
}

// SetRootHandler publishes a new root. Only the configured admin may do
// that.
type SetRootHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = SetRootHandler{}

// NewSetRootHandler returns a handler for SetRootMsg.
func NewSetRootHandler(auth x.Authenticator) SetRootHandler {
	return SetRootHandler{auth: auth, bucket: NewRootBucket()}
}

func (h SetRootHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: setRootCost}, nil
}

func (h SetRootHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	height, _ := weave.GetHeight(ctx)
	root := &Root{
		Metadata: &weave.Metadata{Schema: 1},
		Root:     msg.Root,
		Height:   height,
		SetAt:    weave.AsUnixTime(now),
	}
	if err := h.bucket.Put(db, rootKey, root); err != nil {
		return nil, errors.Wrap(err, "cannot store root")
	}
	weave.GetLogger(ctx).With("module", packageName).Info("root published", "height", height)
	return &weave.DeliverResult{}, nil
}

func (h SetRootHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetRootMsg, error) {
	var msg SetRootMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "registry admin signature required")
	}
	return &msg, nil
}

// CreateCompressedLivenessHandler stores advisory attestations.
type CreateCompressedLivenessHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ weave.Handler = CreateCompressedLivenessHandler{}

// NewCreateCompressedLivenessHandler returns a handler for
// CreateCompressedLivenessMsg.
func NewCreateCompressedLivenessHandler(auth x.Authenticator) CreateCompressedLivenessHandler {
	return CreateCompressedLivenessHandler{auth: auth, bucket: NewAttestationBucket()}
}

func (h CreateCompressedLivenessHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: attestationCost}, nil
}

// Deliver stores the attestation and returns its identifier.
func (h CreateCompressedLivenessHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	key, att, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Put(db, key, att); err != nil {
		return nil, errors.Wrap(err, "cannot store attestation")
	}
	return &weave.DeliverResult{Data: key}, nil
}

func (h CreateCompressedLivenessHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) ([]byte, *Attestation, error) {
	var msg CreateCompressedLivenessMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	testator := x.AnySigner(ctx, h.auth, msg.Testator)
	if testator == nil || !h.auth.HasAddress(ctx, testator) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "testator signature required")
	}
	payer := msg.Payer
	if payer == nil {
		payer = testator
	}
	if !h.auth.HasAddress(ctx, payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature required")
	}

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	key := AttestationID(testator, msg.ProofData, msg.OutputIndex)
	switch err := h.bucket.Has(db, key); {
	case err == nil:
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "attestation exists")
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}

	leaf := MixingDigest(msg.ProofData)
	att := &Attestation{
		Metadata:    &weave.Metadata{Schema: 1},
		Testator:    testator,
		Payer:       payer,
		Leaf:        leaf[:],
		ProofData:   msg.ProofData,
		TreeRouting: msg.TreeRouting,
		OutputIndex: msg.OutputIndex,
		CreatedAt:   weave.AsUnixTime(now),
	}
	return key, att, nil
}

// AttestationID returns the deterministic identifier of an attestation.
func AttestationID(testator weave.Address, proofData []byte, outputIndex uint32) []byte {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], outputIndex)
	name := make([]byte, 0, len(testator)+len(proofData)+len(idx))
	name = append(name, testator...)
	name = append(name, idx[:]...)
	name = append(name, proofData...)
	id := uuid.NewSHA1(attestationSpace, name)
	return id[:]
}
