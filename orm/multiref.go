package orm

import (
	"bytes"
	"sort"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// MultiRef is the value of a non unique index entry: the sorted primary
// keys of all objects sharing the index key.
type MultiRef struct {
	Refs [][]byte `json:"refs"`
}

var _ Model = (*MultiRef)(nil)

// NewMultiRef returns a set holding the given references.
func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	var m MultiRef
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return weave.EncodeBinary(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return weave.DecodeBinary(raw, m)
}

// search returns the position of ref and whether it is present.
func (m *MultiRef) search(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(n int) bool {
		return bytes.Compare(m.Refs[n], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

// Add inserts ref keeping the order. ErrDuplicate is returned when it is
// already present.
func (m *MultiRef) Add(ref []byte) error {
	i, found := m.search(ref)
	if found {
		return errors.Wrapf(errors.ErrDuplicate, "reference %X", ref)
	}
	m.Refs = append(m.Refs[:i], append([][]byte{ref}, m.Refs[i:]...)...)
	return nil
}

// Remove deletes ref. ErrNotFound is returned when it is missing.
func (m *MultiRef) Remove(ref []byte) error {
	i, found := m.search(ref)
	if !found {
		return errors.Wrapf(errors.ErrNotFound, "reference %X", ref)
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

func (m *MultiRef) Size() int {
	return len(m.Refs)
}

// Validate rejects an empty set. An index entry without references is
// deleted instead of stored.
func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}
