package cash

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// Addresses are hex encoded.
type GenesisAccount struct {
	Address weave.Address `json:"address"`
	Coins   []*coin.Coin  `json:"coins"`
}

// Initializer fulfils the weave.Initializer interface to load data from
// the genesis file.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database.
func (Initializer) FromGenesis(opts weave.Options, kv weave.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	bucket := NewBucket()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		set, err := NewSet(acct.Coins...)
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := bucket.Put(kv, acct.Address, set); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
