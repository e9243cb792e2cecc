package escrow

import (
	"crypto/subtle"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/tendermint/tendermint/crypto/merkle"
)

// Claim is the liveness evidence submitted with a refresh.
type Claim struct {
	// Root is the claimed root. Nil if not provided.
	Root []byte
	// Proof elements, 32 bytes each.
	Proof [][]byte
	// Index and Total locate the leaf in a merkle tree.
	Index int64
	Total int64
}

// ProofVerifier decides if a liveness claim is acceptable for a record.
type ProofVerifier interface {
	// Verify returns the commitment of the verified leaf. The commitment
	// is nil when nothing was verified.
	Verify(db weave.ReadOnlyKVStore, r *Record, c Claim) ([]byte, error)
}

// verifierFor is the single place that decides how liveness of a record is
// verified. Production chains never bypass verification.
func verifierFor(r *Record, conf *Configuration, roots liveness.RootSource) ProofVerifier {
	switch {
	case conf.Production:
		return ValidityProofVerifier{roots: roots}
	case r.DebugMode:
		return BypassVerifier{}
	default:
		return MixingDigestVerifier{roots: roots}
	}
}

// BypassVerifier accepts every claim.
type BypassVerifier struct{}

var _ ProofVerifier = BypassVerifier{}

func (BypassVerifier) Verify(weave.ReadOnlyKVStore, *Record, Claim) ([]byte, error) {
	return nil, nil
}

// MixingDigestVerifier recomputes the liveness leaf of the record with the
// mixing digest.
//
// Without a proof, the claimed root must be the leaf itself or the
// published registry root. With a proof, the leaf folded with all proof
// elements must give the published root. A missing root stands for the
// published root and then requires a proof.
type MixingDigestVerifier struct {
	roots liveness.RootSource
}

var _ ProofVerifier = MixingDigestVerifier{}

// NewMixingDigestVerifier returns a verifier reading the published root
// from given source.
func NewMixingDigestVerifier(roots liveness.RootSource) MixingDigestVerifier {
	return MixingDigestVerifier{roots: roots}
}

func (v MixingDigestVerifier) Verify(db weave.ReadOnlyKVStore, r *Record, c Claim) ([]byte, error) {
	leaf := liveness.Leaf(r.Testator, r.LastLivenessAt)
	published, err := v.roots.CurrentRoot(db)
	if err != nil {
		return nil, errors.Wrap(err, "current root")
	}

	root := c.Root
	if len(root) == 0 {
		if len(c.Proof) == 0 {
			return nil, errors.Wrap(ErrInvalidLivenessRoot, "root or proof required")
		}
		root = published
	}

	if len(c.Proof) == 0 {
		if equal(root, leaf[:]) || (len(published) != 0 && equal(root, published)) {
			return liveness.Commitment(leaf[:]), nil
		}
		return nil, errors.Wrap(ErrInvalidLivenessRoot, "root is neither the leaf nor the published root")
	}

	if len(published) == 0 || !equal(root, published) {
		return nil, errors.Wrap(ErrInvalidLivenessRoot, "proof must lead to the published root")
	}
	folded := liveness.Fold(leaf[:], c.Proof)
	if !equal(folded[:], root) {
		return nil, errors.Wrap(ErrInvalidLivenessRoot, "proof does not match")
	}
	return liveness.Commitment(leaf[:]), nil
}

// ValidityProofVerifier requires a merkle inclusion proof of the record
// leaf in the published registry root.
type ValidityProofVerifier struct {
	roots liveness.RootSource
}

var _ ProofVerifier = ValidityProofVerifier{}

// NewValidityProofVerifier returns a verifier reading the published root
// from given source.
func NewValidityProofVerifier(roots liveness.RootSource) ValidityProofVerifier {
	return ValidityProofVerifier{roots: roots}
}

func (v ValidityProofVerifier) Verify(db weave.ReadOnlyKVStore, r *Record, c Claim) ([]byte, error) {
	published, err := v.roots.CurrentRoot(db)
	if err != nil {
		return nil, errors.Wrap(err, "current root")
	}
	if len(published) == 0 {
		return nil, errors.Wrap(ErrInvalidLivenessRoot, "no root published")
	}
	if len(c.Root) != 0 && !equal(c.Root, published) {
		return nil, errors.Wrap(ErrInvalidLivenessRoot, "not the published root")
	}

	leaf := liveness.Leaf(r.Testator, r.LastLivenessAt)
	commitment := liveness.Commitment(leaf[:])
	proof := merkle.SimpleProof{
		Total:    int(c.Total),
		Index:    int(c.Index),
		LeafHash: commitment,
		Aunts:    c.Proof,
	}
	if err := proof.Verify(published, leaf[:]); err != nil {
		return nil, errors.Wrapf(ErrInvalidLivenessRoot, "inclusion proof: %s", err)
	}
	return commitment, nil
}

func equal(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}
