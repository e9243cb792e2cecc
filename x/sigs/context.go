package sigs

import (
	"context"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/x"
)

type signersKey struct{}

// withSigners stores the verified signers. Only the signature decorator
// may call it.
func withSigners(ctx weave.Context, signers []weave.Condition) weave.Context {
	return context.WithValue(ctx, signersKey{}, signers)
}

// Authenticate resolves the conditions of the keys whose signatures the
// Decorator verified.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the signers of the transaction. The result is nil
// for a context that did not pass the Decorator.
func (Authenticate) GetConditions(ctx weave.Context) []weave.Condition {
	signers, _ := ctx.Value(signersKey{}).([]weave.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
