/*
Package orm stores models in named buckets on top of a key value store.

Every bucket owns the keys starting with "<name>:" and holds a single model
type. Secondary indexes, unique or not, map a value computed from the model
to the primary keys of all models sharing it. Buckets and indexes answer
ABCI queries once registered in a query router.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket stores objects cloned from proto under a name prefix. Use it
// through a ModelBucket.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Cloneable
	indexes map[string]Index
}

var _ weave.QueryHandler = Bucket{}

// NewBucket panics unless the name is 3 to 10 lowercase letters or
// underscores.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("invalid bucket name %q", name))
	}
	return Bucket{name: name, prefix: []byte(name + ":"), proto: proto}
}

func (b Bucket) Name() string {
	return b.name
}

// WithIndex returns a copy of the bucket maintaining an additional index.
// It panics when the name is taken.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("index %q registered twice", name))
	}
	indexes := map[string]Index{
		name: NewIndex(b.name+"_"+name, indexer, unique, b.DBKey),
	}
	for n, idx := range b.indexes {
		indexes[n] = idx
	}
	b.indexes = indexes
	return b
}

// Register adds query handlers for "/<name>" and "/<name>/<index>". An
// empty name uses the bucket name.
func (b Bucket) Register(name string, r weave.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
	for n, idx := range b.indexes {
		r.Register("/"+name+"/"+n, idx)
	}
}

// DBKey returns a new slice holding the prefixed store key.
func (b Bucket) DBKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(b.prefix)+len(key)), b.prefix...), key...)
}

func (b Bucket) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	switch mod {
	case weave.KeyQueryMod:
		key := b.DBKey(data)
		switch value, err := db.Get(key); {
		case err != nil:
			return nil, err
		case value == nil:
			return nil, nil
		default:
			return []weave.Model{weave.Pair(key, value)}, nil
		}
	case weave.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	}
	return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
}

// Get returns nil without an error when the key is missing.
func (b Bucket) Get(db weave.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	return b.Parse(key, raw)
}

// Parse loads a stored value into a new object with the given primary key.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "%s bucket", b.name)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates and writes the object, updating all indexes.
func (b Bucket) Save(db weave.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return err
	}
	if raw == nil {
		raw = []byte{}
	}
	if err := b.reindex(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

// Delete removes the object and its index entries.
func (b Bucket) Delete(db weave.KVStore, key []byte) error {
	if err := b.reindex(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// reindex updates every index for the object stored under key being
// replaced by next. A nil next is a removal.
func (b Bucket) reindex(db weave.KVStore, key []byte, next Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil || (prev == nil && next == nil) {
		return err
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, next); err != nil {
			return err
		}
	}
	return nil
}

// GetIndexed returns the objects indexed under value by the named index.
func (b Bucket) GetIndexed(db weave.ReadOnlyKVStore, index string, value []byte) ([]Object, error) {
	idx, ok := b.indexes[index]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "no index %q", index)
	}
	pks, err := idx.GetAt(db, value)
	if err != nil {
		return nil, err
	}
	var objs []Object
	for _, pk := range pks {
		obj, err := b.Get(db, pk)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
