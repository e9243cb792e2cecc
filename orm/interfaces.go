package orm

import (
	"github.com/lastwill-labs/weave"
)

// Model is an entity stored in a bucket. It is serialized with the amino
// codec and validated on every write.
type Model interface {
	weave.Persistent
	Validate() error
}

// Object binds a model to its primary key.
type Object interface {
	Cloneable
	Key() []byte
	SetKey([]byte)
	Value() Model
	Validate() error
}

// Cloneable returns a new object to load a stored value into.
type Cloneable interface {
	Clone() Object
}

// Indexer returns the index value of an object. Objects with an empty
// index value are not indexed.
type Indexer func(Object) ([]byte, error)
