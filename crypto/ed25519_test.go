package crypto

import (
	"bytes"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/weavetest/assert"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()
	assert.Nil(t, pub.Validate())

	msg := []byte("refresh liveness")
	sig, err := priv.Sign(msg)
	assert.Nil(t, err)

	assert.Equal(t, true, pub.Verify(msg, sig))
	assert.Equal(t, false, pub.Verify([]byte("execute"), sig))
	assert.Equal(t, false, pub.Verify(msg, nil))

	other := GenPrivKeyEd25519().PublicKey()
	assert.Equal(t, false, other.Verify(msg, sig))
}

func TestDeterministicKeys(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed).PublicKey()
	b := PrivKeyEd25519FromSeed(seed).PublicKey()
	assert.Equal(t, a.Ed25519, b.Ed25519)
	assert.Equal(t, a.Address(), b.Address())

	cond := a.Condition()
	ext, typ, data, err := cond.Parse()
	assert.Nil(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, a.Ed25519, data)
	assert.Equal(t, weave.AddressLength, len(a.Address()))
}

func TestInvalidKeys(t *testing.T) {
	var empty *PublicKey
	assert.IsErr(t, errors.ErrEmpty, empty.Validate())
	assert.IsErr(t, errors.ErrInput, (&PublicKey{Ed25519: []byte{1, 2}}).Validate())

	_, err := (&PrivateKey{Ed25519: []byte{1}}).Sign([]byte("x"))
	assert.IsErr(t, errors.ErrInput, err)
}
