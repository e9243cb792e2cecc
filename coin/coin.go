package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lastwill-labs/weave/errors"
)

// Coin is an amount of a single currency with nine decimal places. The value
// is Whole + Fractional/FracUnit. A normalized coin keeps Fractional within
// (-FracUnit, FracUnit) and both parts carry the same sign.
type Coin struct {
	Whole      int64  `json:"whole,omitempty"`
	Fractional int64  `json:"fractional,omitempty"`
	Ticker     string `json:"ticker"`
}

// IsCC returns true if the value is a valid currency code.
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// FracUnit is the number of fractional units in one whole unit.
	FracUnit int64 = 1000000000
	MaxFrac        = FracUnit - 1
	MinFrac        = -MaxFrac

	// MaxInt is the largest accepted whole value.
	MaxInt int64 = 999999999999999
	MinInt       = -MaxInt
)

func NewCoin(whole, fractional int64, ticker string) Coin {
	return Coin{Whole: whole, Fractional: fractional, Ticker: ticker}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// ID returns the ticker, which identifies the coin in a set.
func (c Coin) ID() string {
	return c.Ticker
}

// neutral coins carry no value and no currency. They can be added to any
// coin.
func (c Coin) neutral() bool {
	return c.Ticker == "" && c.IsZero()
}

// Add returns the sum of both coins. Currencies must match unless one of
// the coins is neutral.
func (c Coin) Add(o Coin) (Coin, error) {
	switch {
	case c.neutral():
		return o, nil
	case o.neutral():
		return c, nil
	case c.Ticker != o.Ticker:
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "cannot add %s to %s", o.Ticker, c.Ticker)
	}
	return carry(c.Whole+o.Whole, c.Fractional+o.Fractional, c.Ticker)
}

// Subtract returns c reduced by amount. The result may be negative.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	return c.Add(amount.Negative())
}

// Negative returns the coin with the opposite value.
func (c Coin) Negative() Coin {
	return Coin{Whole: -c.Whole, Fractional: -c.Fractional, Ticker: c.Ticker}
}

// carry normalizes the given parts.
func carry(whole, frac int64, ticker string) (Coin, error) {
	whole += frac / FracUnit
	frac %= FracUnit
	switch {
	case whole > 0 && frac < 0:
		whole--
		frac += FracUnit
	case whole < 0 && frac > 0:
		whole++
		frac -= FracUnit
	}
	if whole < MinInt || whole > MaxInt {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%d %s", whole, ticker)
	}
	return Coin{Whole: whole, Fractional: frac, Ticker: ticker}, nil
}

// Compare returns 1 if c is larger than o, -1 if smaller and 0 if both
// values are equal. The ticker is ignored and both coins must be
// normalized.
func (c Coin) Compare(o Coin) int {
	a, b := c.Fractional, o.Fractional
	if c.Whole != o.Whole {
		a, b = c.Whole, o.Whole
	}
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Equals returns true if all fields are identical.
func (c Coin) Equals(o Coin) bool {
	return c == o
}

// IsEmpty returns true for nil or a zero amount.
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

func (c Coin) IsPositive() bool {
	return c.Compare(Coin{}) > 0
}

func (c Coin) IsNonNegative() bool {
	return c.Compare(Coin{}) >= 0
}

// IsGTE returns true if c is of the same currency and at least as large as
// o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Compare(o) >= 0
}

// SameType returns true if both coins are of the same currency.
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone returns an independent copy.
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// Validate checks the currency code and that the value is normalized.
// Negative values are valid.
func (c Coin) Validate() error {
	var errs error
	if !IsCC(c.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrCurrency, "invalid currency %q", c.Ticker))
	}
	if c.Whole < MinInt || c.Whole > MaxInt {
		errs = errors.Append(errs, errors.Wrap(errors.ErrOverflow, "whole"))
	}
	if c.Fractional < MinFrac || c.Fractional > MaxFrac {
		errs = errors.Append(errs, errors.Wrap(errors.ErrOverflow, "fractional"))
	}
	if (c.Whole > 0 && c.Fractional < 0) || (c.Whole < 0 && c.Fractional > 0) {
		errs = errors.Append(errs, errors.Wrap(errors.ErrState, "mismatched sign"))
	}
	return errs
}

// String returns the human readable format, for example "1.25 ETH". A coin
// without a ticker is printed as a bare number.
func (c Coin) String() string {
	if n, err := carry(c.Whole, c.Fractional, c.Ticker); err == nil {
		c = n
	}
	var b strings.Builder
	whole, frac := c.Whole, c.Fractional
	if whole < 0 || frac < 0 {
		b.WriteByte('-')
		whole, frac = -whole, -frac
	}
	b.WriteString(strconv.FormatInt(whole, 10))
	if frac != 0 {
		b.WriteString(strings.TrimRight(fmt.Sprintf(".%09d", frac), "0"))
	}
	if c.Ticker != "" {
		b.WriteString(" " + c.Ticker)
	}
	return b.String()
}

var humanFormat = regexp.MustCompile(`^(-?)\s*(\d+)(?:\.(\d{1,9}))?\s*([A-Z]{3,4})$`)

// ParseHumanFormat parses the "<whole>[.<fractional>] <ticker>" format.
// At most nine decimal places are accepted.
func ParseHumanFormat(h string) (Coin, error) {
	m := humanFormat.FindStringSubmatch(strings.TrimSpace(h))
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	whole, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "whole: %s", err)
	}
	var frac int64
	if m[3] != "" {
		// right pad to nine digits: ".25" is 250000000 units
		frac, err = strconv.ParseInt(m[3]+strings.Repeat("0", 9-len(m[3])), 10, 64)
		if err != nil {
			return Coin{}, errors.Wrapf(errors.ErrInput, "fractional: %s", err)
		}
	}
	if m[1] == "-" {
		whole, frac = -whole, -frac
	}
	return NewCoin(whole, frac, m[4]), nil
}

// UnmarshalJSON accepts both the human readable string format and the
// structured form.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type structured Coin
	var s structured
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrapf(errors.ErrInput, "coin: %s", err)
	}
	*c = Coin(s)
	return nil
}

// Set and Type implement the command line flag value interface.
func (c *Coin) Set(raw string) error {
	parsed, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Coin) Type() string {
	return "coin"
}
