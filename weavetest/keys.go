package weavetest

import (
	"bytes"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/crypto"
)

// NewKey returns a random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a random key.
func NewCondition() weave.Condition {
	return NewKey().PublicKey().Condition()
}

// SeedKey returns the key derived from a seed made of a single repeated
// byte, for tests that need stable addresses.
func SeedKey(seed byte) *crypto.PrivateKey {
	return crypto.PrivKeyEd25519FromSeed(bytes.Repeat([]byte{seed}, 32))
}

// ParseAddress decodes any address format accepted by weave.ParseAddress
// and fails the test on error.
func ParseAddress(t testing.TB, raw string) weave.Address {
	t.Helper()
	addr, err := weave.ParseAddress(raw)
	if err != nil {
		t.Fatalf("cannot parse address %q: %s", raw, err)
	}
	return addr
}
