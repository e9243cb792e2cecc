package cash

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/orm"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to
	// the destination account. This operation is atomic.
	MoveCoins(db weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error
}

// Controller is the functionality needed by cash.Handler and other
// extensions that want to hold value in custody.
type Controller interface {
	CoinMover

	// Balance returns the coins held by the given address. An unknown
	// address results in ErrEmpty.
	Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error)

	// IssueCoins adds the given amount to the destination account.
	IssueCoins(db weave.KVStore, dest weave.Address, amount coin.Coin) error
}

// BaseController is a simple implementation of the Controller.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the default bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Balance returns the coins held by the given address.
func (c BaseController) Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error) {
	var set Set
	switch err := c.bucket.One(db, addr, &set); {
	case err == nil:
		return set.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(errors.ErrEmpty, "no wallet for %s", addr)
	default:
		return nil, err
	}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}

	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrap(errors.ErrAmount, "funds")
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := c.save(db, src, sender); err != nil {
		return err
	}

	// The recipient is loaded after the sender was saved, so that moving
	// coins to self does not create value.
	recipient, err := c.loadOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db weave.KVStore, dest weave.Address, amount coin.Coin) error {
	recipient, err := c.loadOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

func (c BaseController) load(db weave.ReadOnlyKVStore, addr weave.Address) (*Set, error) {
	var set Set
	switch err := c.bucket.One(db, addr, &set); {
	case err == nil:
		return &set, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

func (c BaseController) loadOrCreate(db weave.ReadOnlyKVStore, addr weave.Address) (*Set, error) {
	set, err := c.load(db, addr)
	if err != nil || set != nil {
		return set, err
	}
	return NewSet()
}

// save stores the wallet or removes it when it no longer holds any coins.
func (c BaseController) save(db weave.KVStore, addr weave.Address, set *Set) error {
	if len(set.Coins) == 0 {
		if err := c.bucket.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	return c.bucket.Put(db, addr, set)
}
