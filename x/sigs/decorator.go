/*
Package sigs verifies the ed25519 signatures of a transaction and keeps a
sequence per signing key, so a signed transaction cannot be replayed.
Verified signers are exposed to handlers through Authenticate.
*/
package sigs

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// Gas charged during check for every verified signature.
const signatureVerifyCost = 500

// RegisterQuery exposes the signer accounts under "/auth".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies all signatures of a signed transaction and puts the
// signers into the context. Transactions that are not signable pass
// untouched.
type Decorator struct {
	allowMissingSigs bool
}

var _ weave.Decorator = Decorator{}

// NewDecorator returns a decorator that rejects a signable transaction
// without signatures.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a decorator accepting unsigned transactions.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

func (d Decorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	signers, err := d.signers(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(withSigners(ctx, signers), db, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(len(signers)) * signatureVerifyCost
	return res, nil
}

func (d Decorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	signers, err := d.signers(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(withSigners(ctx, signers), db, tx)
}

func (d Decorator) signers(ctx weave.Context, db weave.KVStore, tx weave.Tx) ([]weave.Condition, error) {
	signed, ok := tx.(SignedTx)
	if !ok {
		return nil, nil
	}
	signers, err := VerifyTxSignatures(db, signed, weave.GetChainID(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "verify signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, errors.Wrap(errors.ErrUnauthorized, "transaction is not signed")
	}
	return signers, nil
}
