package escrow

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/gconf"
)

const packageName = "escrow"

// Configuration of the escrow extension.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Owner may update this configuration.
	Owner weave.Address `json:"owner"`
	// RecordBond is moved from the payer into custody at creation. It is
	// returned on cancel.
	RecordBond *coin.Coin `json:"record_bond"`
	// Production requires a merkle inclusion proof on every refresh and
	// ignores the debug mode of records.
	Production bool `json:"production"`
	// MaxSecretSize limits the encrypted secret.
	MaxSecretSize int32 `json:"max_secret_size"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error) { return weave.EncodeBinary(c) }

func (c *Configuration) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, c) }

func (c *Configuration) GetOwner() weave.Address { return c.Owner }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "RecordBond", validateAmount(c.RecordBond))
	if c.MaxSecretSize < 1 || c.MaxSecretSize > MaxSecretSize {
		errs = errors.Append(errs, errors.Field("MaxSecretSize", errors.ErrInput, "must be between 1 and %d", MaxSecretSize))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
