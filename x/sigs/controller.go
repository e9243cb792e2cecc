package sigs

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/crypto"
	"github.com/lastwill-labs/weave/errors"
)

// SignCodeV1 prefixes every payload before it is hashed and signed.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures verifies every signature of the transaction and
// returns the conditions of all signers, in signature order. A single
// invalid signature fails the whole transaction.
func VerifyTxSignatures(db weave.KVStore, tx SignedTx, chainID string) ([]weave.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	all := tx.GetSignatures()
	conds := make([]weave.Condition, len(all))
	for i, sig := range all {
		if conds[i], err = VerifySignature(db, sig, payload, chainID); err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
	}
	return conds, nil
}

// VerifySignature verifies a single signature of the payload and advances
// the sequence of the signing account.
func VerifySignature(db weave.KVStore, sig *StdSignature, payload []byte, chainID string) (weave.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	b := NewBucket()
	user, err := loadOrCreate(db, b, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	addr := user.Pubkey.Address()
	if err := b.Put(db, addr, user); err != nil {
		return nil, errors.Wrapf(err, "store account %s", addr)
	}
	return user.Pubkey.Condition(), nil
}

// BuildSignBytes returns the sha512 digest that is signed for a payload.
// The hashed message is laid out as
//
//	sign code (4) | len(chainID) (1) | chainID | sequence (8, big endian) | payload
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	switch {
	case seq < 0:
		return nil, errors.Wrapf(ErrInvalidSequence, "negative sequence %d", seq)
	case !weave.IsValidChainID(chainID):
		return nil, errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}

	var msg bytes.Buffer
	msg.Grow(len(SignCodeV1) + 1 + len(chainID) + 8 + len(payload))
	msg.Write(SignCodeV1)
	msg.WriteByte(byte(len(chainID)))
	msg.WriteString(chainID)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))
	msg.Write(nonce[:])
	msg.Write(payload)

	digest := sha512.Sum512(msg.Bytes())
	return digest[:], nil
}

// BuildSignBytesTx returns the digest to sign for the transaction.
func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	return BuildSignBytes(payload, chainID, seq)
}

// SignTx signs the transaction with the given sequence.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	digest, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}
	raw, err := signer.Sign(digest)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	return &StdSignature{Pubkey: signer.PublicKey(), Signature: raw, Sequence: seq}, nil
}

// NextSequence returns the sequence the key must use for its next
// signature. Unknown keys start at zero.
func NextSequence(db weave.ReadOnlyKVStore, pubkey *crypto.PublicKey) (int64, error) {
	user, err := loadOrCreate(db, NewBucket(), pubkey)
	if err != nil {
		return 0, err
	}
	return user.Sequence, nil
}
