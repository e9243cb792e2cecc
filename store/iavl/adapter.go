package iavl

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// cacheSize is the number of tree nodes kept in memory.
	cacheSize = 10000

	// DefaultHistory is the number of committed versions kept on disk.
	// Older versions are pruned on commit.
	DefaultHistory = 20
)

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree       *iavl.MutableTree
	numHistory int64
}

var _ weave.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with goleveldb disk backing.
func NewCommitStore(path, name string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return newCommitStore(db, DefaultHistory), nil
}

// MockCommitStore creates a new in-memory store, useful for tests.
func MockCommitStore() *CommitStore {
	return newCommitStore(dbm.NewMemDB(), DefaultHistory)
}

func newCommitStore(db dbm.DB, numHistory int64) *CommitStore {
	return &CommitStore{
		tree:       iavl.NewMutableTree(db, cacheSize),
		numHistory: numHistory,
	}
}

// Get returns the value at last committed state. Returns nil iff key
// doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	version := s.tree.Version()
	if version == 0 {
		return nil, nil
	}
	committed, err := s.tree.GetImmutable(version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	_, val := committed.Get(key)
	return val, nil
}

// Commit the next version to disk, and returns info.
func (s *CommitStore) Commit() (weave.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return weave.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	// release an old version of history, if not a sync waypoint
	if s.numHistory > 0 && s.numHistory < version {
		toRelease := version - s.numHistory
		if err := s.tree.DeleteVersion(toRelease); err != nil {
			return weave.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}

	return weave.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version. If there was a
// crash during the last commit, it is guaranteed to return a stable state,
// even if older.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (weave.CommitID, error) {
	return weave.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap wraps the working tree with a btree cache. Writing the cache
// stages the changes in the working tree for the next Commit.
func (s *CommitStore) CacheWrap() weave.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// Adapter returns a wrapped version of the working tree.
//
// Writes to the adapter are applied to the working tree immediately and
// become part of the next Commit. Unless you know what you are doing, use
// CacheWrap.
func (s *CommitStore) Adapter() weave.CacheableKVStore {
	return adapter{tree: s.tree}
}

// adapter converts the working tree into a KVStore.
type adapter struct {
	tree *iavl.MutableTree
}

var _ weave.CacheableKVStore = adapter{}

// Get returns nil iff key doesn't exist.
func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value.
func (a adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree.
func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops.
func (a adapter) NewBatch() weave.Batch {
	return store.NewNonAtomicBatch(a)
}

// CacheWrap wraps us once again, with btree.
func (a adapter) CacheWrap() weave.KVCacheWrap {
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a adapter) Iterator(start, end []byte) (weave.Iterator, error) {
	return store.NewSliceIterator(a.collect(start, end, true)), nil
}

// ReverseIterator over a domain of keys in descending order. End is
// exclusive.
func (a adapter) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	return store.NewSliceIterator(a.collect(start, end, false)), nil
}

func (a adapter) collect(start, end []byte, ascending bool) []weave.Model {
	var res []weave.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, weave.Model{Key: key, Value: value})
		return false
	})
	return res
}
