package liveness

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/gconf"
)

const packageName = "liveness"

// Configuration declares who may publish registry roots.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Owner may update this configuration.
	Owner weave.Address `json:"owner"`
	// Admin may publish a new root.
	Admin weave.Address `json:"admin"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error) { return weave.EncodeBinary(c) }

func (c *Configuration) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, c) }

func (c *Configuration) GetOwner() weave.Address { return c.Owner }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "Admin", c.Admin.Validate())
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
