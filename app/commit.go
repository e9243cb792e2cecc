package app

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// layers holds the committed state together with the two cache layers
// stacked on top of it. Deliver writes reach the committed state on
// commit, check writes never do.
type layers struct {
	committed weave.CommitKVStore
	deliver   weave.KVCacheWrap
	check     weave.KVCacheWrap
}

// newLayers loads the latest version of the committed state. It panics if
// the state cannot be loaded.
func newLayers(committed weave.CommitKVStore) *layers {
	if err := committed.LoadLatestVersion(); err != nil {
		panic(errors.Wrap(err, "load latest version"))
	}
	l := &layers{committed: committed}
	l.reset()
	return l
}

func (l *layers) reset() {
	l.deliver = l.committed.CacheWrap()
	l.check = l.committed.CacheWrap()
}

// latest returns the version and hash of the last commit.
func (l *layers) latest() (weave.CommitID, error) {
	return l.committed.LatestVersion()
}

// snapshot returns a read view of the last committed state. Release it
// with Discard.
func (l *layers) snapshot() weave.KVCacheWrap {
	return l.committed.CacheWrap()
}

// commit persists all deliver writes, drops pending check writes and
// starts fresh caches for the next block.
func (l *layers) commit() (weave.CommitID, error) {
	if err := l.deliver.Write(); err != nil {
		return weave.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	l.check.Discard()
	id, err := l.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	l.reset()
	return id, nil
}

// chainIDKey lives in the namespace reserved for framework data.
var chainIDKey = []byte("_wv:chainID")

// loadChainID returns the stored chain id or an empty string before
// genesis.
func loadChainID(db weave.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get(chainIDKey)
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(raw), nil
}

// saveChainID writes the chain id once. The chain id of an initialized
// state never changes.
func saveChainID(db weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	switch ok, err := db.Has(chainIDKey); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case ok:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis only")
	}
	return errors.Wrap(db.Set(chainIDKey, []byte(chainID)), "save chain id")
}
