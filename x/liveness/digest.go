package liveness

import (
	"encoding/binary"

	"github.com/lastwill-labs/weave"
	"github.com/tendermint/tendermint/crypto/merkle"
)

// DigestSize is the size of every root, leaf and commitment.
const DigestSize = 32

// MixingDigest folds data into a 32 byte accumulator. Byte i is mixed into
// slot i%32 by adding it, rotating the sum left by three bits and flipping
// every other bit.
//
// The result depends on the order of the input bytes. It is not a
// cryptographic hash.
func MixingDigest(data ...[]byte) [DigestSize]byte {
	var acc [DigestSize]byte
	var i int
	for _, chunk := range data {
		for _, b := range chunk {
			slot := i % DigestSize
			v := acc[slot] + b
			acc[slot] = (v<<3 | v>>5) ^ 0x55
			i++
		}
	}
	return acc
}

// Leaf returns the liveness leaf of a testator as of the given time.
func Leaf(testator weave.Address, lastLivenessAt weave.UnixTime) [DigestSize]byte {
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(lastLivenessAt))
	return MixingDigest(testator, ts[:])
}

// Fold mixes all proof elements into the leaf, in order.
func Fold(leaf []byte, proof [][]byte) [DigestSize]byte {
	chunks := make([][]byte, 0, len(proof)+1)
	chunks = append(chunks, leaf)
	chunks = append(chunks, proof...)
	return MixingDigest(chunks...)
}

// Commitment returns the value committed to a merkle tree for given leaf.
func Commitment(leaf []byte) []byte {
	return merkle.SimpleHashFromByteSlices([][]byte{leaf})
}

// BuildTree returns the merkle root of given leaves together with an
// inclusion proof for each of them.
func BuildTree(leaves [][]byte) ([]byte, []*merkle.SimpleProof) {
	return merkle.SimpleProofsFromByteSlices(leaves)
}
