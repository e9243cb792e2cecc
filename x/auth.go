package x

import (
	"github.com/lastwill-labs/weave"
)

// Authenticator reveals who authorized the current transaction. Handlers
// receive it in their constructor and never depend on a concrete
// signature scheme.
type Authenticator interface {
	// GetConditions returns all conditions fulfilled by the transaction,
	// in the order they were verified.
	GetConditions(weave.Context) []weave.Condition
	// HasAddress returns true if any fulfilled condition resolves to the
	// address.
	HasAddress(weave.Context, weave.Address) bool
}

// MultiAuth joins the conditions of several authenticators. Conditions
// keep the order of the authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

// ChainAuth returns an authenticator fulfilled by any of the given ones.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

func (m MultiAuth) GetConditions(ctx weave.Context) []weave.Condition {
	var all []weave.Condition
	for _, a := range m {
		all = append(all, a.GetConditions(ctx)...)
	}
	return all
}

func (m MultiAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, a := range m {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first fulfilled condition or nil.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	if conds := auth.GetConditions(ctx); len(conds) != 0 {
		return conds[0]
	}
	return nil
}

// AnySigner returns addr unless it is empty, in which case the address of
// the main signer is used. Nil is returned when the transaction is not
// signed and no address was given.
func AnySigner(ctx weave.Context, auth Authenticator, addr weave.Address) weave.Address {
	if len(addr) != 0 {
		return addr
	}
	if main := MainSigner(ctx, auth); main != nil {
		return main.Address()
	}
	return nil
}

// HasAllAddresses returns true if every required address authorized the
// transaction. Escrow execution requires both the beneficiary and the
// verifier this way.
func HasAllAddresses(ctx weave.Context, auth Authenticator, required []weave.Address) bool {
	for _, addr := range required {
		if !auth.HasAddress(ctx, addr) {
			return false
		}
	}
	return true
}
