package orm

import (
	"bytes"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// Index is a secondary index of a bucket. Every object is indexed under
// the key returned by the Indexer. A unique index stores the single
// primary key as the value, other indexes store a MultiRef.
type Index struct {
	name   string
	prefix []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ weave.QueryHandler = Index{}

// NewIndex returns an index stored under "_i.<name>:". refKey turns a
// primary key into the full key of the indexed object.
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		prefix: []byte("_i." + name + ":"),
		unique: unique,
		index:  indexer,
		refKey: refKey,
	}
}

func (i Index) Name() string {
	return i.name
}

// IndexKey returns the full store key of an index value.
func (i Index) IndexKey(value []byte) []byte {
	return append(append(make([]byte, 0, len(i.prefix)+len(value)), i.prefix...), value...)
}

// Update keeps the index in sync with an object change. A nil prev is an
// insert and a nil next is a delete. The primary key cannot change.
func (i Index) Update(db weave.KVStore, prev, next Object) error {
	var prevVal, nextVal []byte
	var err error
	switch {
	case prev == nil && next == nil:
		return errors.Wrap(errors.ErrHuman, "index update without an object")
	case prev != nil && next != nil && !bytes.Equal(prev.Key(), next.Key()):
		return errors.Wrap(errors.ErrImmutable, "primary key")
	}
	if prev != nil {
		if prevVal, err = i.index(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if nextVal, err = i.index(next); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if prev != nil && next != nil && bytes.Equal(prevVal, nextVal) {
		return nil
	}

	// Insert first so a unique conflict leaves the previous entry intact.
	if next != nil {
		if err := i.insert(db, nextVal, next.Key()); err != nil {
			return err
		}
	}
	if prev != nil {
		return i.remove(db, prevVal, prev.Key())
	}
	return nil
}

func (i Index) insert(db weave.KVStore, value, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	refs, err := i.refs(db, value)
	if err != nil {
		return err
	}
	if i.unique && refs.Size() != 0 {
		return errors.Wrapf(errors.ErrDuplicate, "unique index %s", i.name)
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	return i.save(db, value, refs)
}

func (i Index) remove(db weave.KVStore, value, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	refs, err := i.refs(db, value)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	return i.save(db, value, refs)
}

// refs loads the primary keys stored under an index value.
func (i Index) refs(db weave.ReadOnlyKVStore, value []byte) (*MultiRef, error) {
	raw, err := db.Get(i.IndexKey(value))
	switch {
	case err != nil:
		return nil, err
	case raw == nil:
		return &MultiRef{}, nil
	case i.unique:
		return &MultiRef{Refs: [][]byte{raw}}, nil
	}
	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "index %s", i.name)
	}
	return &refs, nil
}

// save writes the primary keys of an index value. An empty set deletes
// the entry.
func (i Index) save(db weave.KVStore, value []byte, refs *MultiRef) error {
	key := i.IndexKey(value)
	switch {
	case refs.Size() == 0:
		return db.Delete(key)
	case i.unique:
		return db.Set(key, refs.Refs[0])
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

// GetAt returns the primary keys indexed under the value, or nil.
func (i Index) GetAt(db weave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	refs, err := i.refs(db, value)
	if err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// Query returns the indexed objects. The data is an index value, or a
// prefix of index values for a prefix query.
func (i Index) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	var pks [][]byte
	switch mod {
	case weave.KeyQueryMod:
		refs, err := i.GetAt(db, data)
		if err != nil {
			return nil, err
		}
		pks = refs
	case weave.PrefixQueryMod:
		entries, err := queryPrefix(db, i.IndexKey(data))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			refs, err := i.refs(db, e.Key[len(i.prefix):])
			if err != nil {
				return nil, err
			}
			pks = append(pks, refs.Refs...)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}

	var models []weave.Model
	for _, pk := range pks {
		key := i.refKey(pk)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		models = append(models, weave.Pair(key, value))
	}
	return models, nil
}
