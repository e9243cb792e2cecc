package liveness

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/gconf"
)

// Genesis is the "liveness" section of the genesis file.
type Genesis struct {
	// Root is an optional root published at height zero.
	Root weave.HexBytes `json:"root"`
}

// Initializer loads the registry configuration and an optional root from
// genesis.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

func (Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	if err := gconf.InitConfig(db, opts, packageName, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}
	var gen Genesis
	if err := opts.ReadOptions(packageName, &gen); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(gen.Root) == 0 {
		return nil
	}
	root := &Root{
		Metadata: &weave.Metadata{Schema: 1},
		Root:     gen.Root,
	}
	return NewRootBucket().Put(db, rootKey, root)
}
