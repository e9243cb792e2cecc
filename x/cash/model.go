package cash

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/orm"
)

// BucketName is where we store the balances.
const BucketName = "cash"

// Set is the content of a wallet: all coins held by a single address,
// sorted by ticker, without zero values.
type Set struct {
	Metadata *weave.Metadata `json:"metadata"`
	Coins    coin.Coins      `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

// Marshal serializes the wallet content.
func (s *Set) Marshal() ([]byte, error) {
	return weave.EncodeBinary(s)
}

// Unmarshal loads the wallet content from its binary form.
func (s *Set) Unmarshal(bz []byte) error {
	return weave.DecodeBinary(bz, s)
}

// Validate requires that all coins are in alphabetical order and that each
// coin is valid in its own right.
func (s *Set) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	errs = errors.AppendField(errs, "Coins", s.Coins.Validate())
	return errs
}

// Add modifies the wallet to add coin c.
func (s *Set) Add(c coin.Coin) error {
	cs, err := s.Coins.Add(c)
	if err != nil {
		return err
	}
	s.Coins = cs
	return nil
}

// Subtract modifies the wallet to remove coin c.
func (s *Set) Subtract(c coin.Coin) error {
	return s.Add(c.Negative())
}

// NewSet returns a wallet content holding given coins.
func NewSet(coins ...*coin.Coin) (*Set, error) {
	s := &Set{Metadata: &weave.Metadata{Schema: 1}}
	for _, c := range coins {
		if c == nil {
			continue
		}
		if err := s.Add(*c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewBucket returns the bucket holding wallets keyed by owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Set{})
}
