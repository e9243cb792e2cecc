package orm

import (
	"reflect"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// ModelBucket stores models of a single type by primary key.
type ModelBucket interface {
	// One loads the model stored under key into dest. ErrNotFound is
	// returned for a missing key and ErrType when dest cannot hold the
	// stored model.
	One(db weave.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns ErrNotFound unless a model is stored under key.
	Has(db weave.ReadOnlyKVStore, key []byte) error

	// ByIndex appends all models indexed under value to dest, which is a
	// pointer to a slice of models or of model pointers. The primary keys
	// are returned in the same order.
	ByIndex(db weave.ReadOnlyKVStore, index string, value []byte, dest ModelSlicePtr) ([][]byte, error)

	// Put validates and stores the model under key.
	Put(db weave.KVStore, key []byte, m Model) error

	// Delete returns ErrNotFound for a missing key.
	Delete(db weave.KVStore, key []byte) error

	Register(name string, r weave.QueryRouter)
}

// ModelSlicePtr is *[]M or *[]*M for the model type M of a bucket.
type ModelSlicePtr interface{}

// ModelBucketOption configures a bucket created by NewModelBucket.
type ModelBucketOption func(mb *modelBucket)

// WithIndex adds a secondary index to the bucket.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithIndex(name, indexer, unique)
	}
}

// NewModelBucket returns a bucket storing models of the same type as m.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	mb := &modelBucket{
		b:     NewBucket(name, NewSimpleObj(nil, m)),
		model: reflect.TypeOf(m),
	}
	for _, opt := range opts {
		opt(mb)
	}
	return mb
}

type modelBucket struct {
	b     Bucket
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) Register(name string, r weave.QueryRouter) {
	mb.b.Register(name, r)
}

func (mb *modelBucket) One(db weave.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	switch {
	case err != nil:
		return err
	case obj == nil || obj.Value() == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.b.Name(), key)
	}
	src := reflect.ValueOf(obj.Value())
	dst := reflect.ValueOf(dest)
	if !src.Type().AssignableTo(dst.Type()) {
		return errors.Wrapf(errors.ErrType, "cannot load %s into %T", src.Type(), dest)
	}
	dst.Elem().Set(src.Elem())
	return nil
}

func (mb *modelBucket) Has(db weave.ReadOnlyKVStore, key []byte) error {
	// The store panics on a nil key.
	if key == nil {
		return errors.Wrap(errors.ErrNotFound, "nil key")
	}
	switch ok, err := db.Has(mb.b.DBKey(key)); {
	case err != nil:
		return err
	case !ok:
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.b.Name(), key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db weave.ReadOnlyKVStore, index string, value []byte, dest ModelSlicePtr) ([][]byte, error) {
	objs, err := mb.b.GetIndexed(db, index, value)
	if err != nil || len(objs) == 0 {
		return nil, err
	}

	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() || ptr.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a pointer to a slice", dest)
	}
	slice := ptr.Elem()
	elem := slice.Type().Elem()
	pointers := elem.Kind() == reflect.Ptr
	if pointers {
		elem = elem.Elem()
	}
	if elem != mb.model.Elem() {
		return nil, errors.Wrapf(errors.ErrType, "%s bucket cannot load %s", mb.b.Name(), elem)
	}

	keys := make([][]byte, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		v := reflect.ValueOf(obj.Value())
		if !pointers {
			v = v.Elem()
		}
		slice.Set(reflect.Append(slice, v))
		keys = append(keys, obj.Key())
	}
	return keys, nil
}

func (mb *modelBucket) Put(db weave.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrInput, "empty key")
	}
	if t := reflect.TypeOf(m); t != mb.model {
		return errors.Wrapf(errors.ErrType, "%s bucket cannot store %s", mb.b.Name(), t)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	return errors.Wrap(mb.b.Save(db, NewSimpleObj(key, m)), "save")
}

func (mb *modelBucket) Delete(db weave.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}
