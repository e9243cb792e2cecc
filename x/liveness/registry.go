package liveness

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/orm"
)

// RootSource provides the currently published registry root.
type RootSource interface {
	// CurrentRoot returns nil when no root was published yet.
	CurrentRoot(db weave.ReadOnlyKVStore) ([]byte, error)
}

// Registry reads the root published with SetRootMsg.
type Registry struct {
	bucket orm.ModelBucket
}

var _ RootSource = Registry{}

// NewRegistry returns a RootSource backed by the root bucket.
func NewRegistry() Registry {
	return Registry{bucket: NewRootBucket()}
}

func (r Registry) CurrentRoot(db weave.ReadOnlyKVStore) ([]byte, error) {
	var root Root
	switch err := r.bucket.One(db, rootKey, &root); {
	case err == nil:
		return root.Root, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// StaticRoot is a RootSource that always returns the same root.
type StaticRoot []byte

func (s StaticRoot) CurrentRoot(weave.ReadOnlyKVStore) ([]byte, error) {
	return s, nil
}
