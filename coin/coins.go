package coin

import (
	"sort"

	"github.com/lastwill-labs/weave/errors"
)

// Coins is a set of coins kept sorted by ticker, with at most one non zero
// entry per currency. Operations return a new set and never modify the
// receiver.
type Coins []*Coin

// Clone returns a deep copy.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	cpy := make(Coins, len(cs))
	for i, c := range cs {
		cpy[i] = c.Clone()
	}
	return cpy
}

// index returns the position of the ticker in the set and whether an entry
// for it exists. When missing, the position is where it would be inserted.
func (cs Coins) index(ticker string) (int, bool) {
	i := sort.Search(len(cs), func(n int) bool { return cs[n].Ticker >= ticker })
	return i, i < len(cs) && cs[i].Ticker == ticker
}

// Add returns a set holding additionally the given coin. Currencies that sum
// up to zero are removed.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	i, found := cs.index(c.Ticker)
	if !found {
		res := make(Coins, 0, len(cs)+1)
		res = append(res, cs[:i]...)
		res = append(res, &c)
		return append(res, cs[i:]...), nil
	}

	sum, err := cs[i].Add(c)
	if err != nil {
		return nil, err
	}
	res := make(Coins, 0, len(cs))
	res = append(res, cs[:i]...)
	if !sum.IsZero() {
		res = append(res, &sum)
	}
	return append(res, cs[i+1:]...), nil
}

// Subtract returns a set reduced by the given coin. The result may hold
// negative values.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Combine returns the sum of both sets.
func (cs Coins) Combine(o Coins) (Coins, error) {
	res := cs
	for _, c := range o {
		var err error
		if res, err = res.Add(*c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains returns true if the set holds at least the given amount.
func (cs Coins) Contains(c Coin) bool {
	i, found := cs.index(c.Ticker)
	return found && cs[i].IsGTE(c)
}

func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsPositive returns true for a non empty set of positive values.
func (cs Coins) IsPositive() bool {
	if cs.IsEmpty() {
		return false
	}
	for _, c := range cs {
		if !c.IsPositive() {
			return false
		}
	}
	return true
}

// IsNonNegative returns true if no value is below zero. An empty set is
// non negative.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsNonNegative() {
			return false
		}
	}
	return true
}

func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i, c := range cs {
		if !c.Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Count returns the number of currencies held.
func (cs Coins) Count() int {
	return len(cs)
}

// Validate requires every coin to be valid and non zero, and the set to be
// strictly sorted by ticker.
func (cs Coins) Validate() error {
	var errs error
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "coin %d", i))
		}
		if c.IsZero() {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrState, "zero value %s", c.Ticker))
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			errs = errors.Append(errs, errors.Wrap(errors.ErrState, "not sorted"))
		}
	}
	return errs
}
