package gconf

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// ReadStore is the part of a store required to load a configuration.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of a store required to save a configuration.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is a configuration that can be validated and serialized.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is a configuration that can be deserialized.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by the configuration of every extension.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// Each extension owns a single configuration entry, stored under the
// extension name in a reserved key space.
func key(pkg string) []byte {
	return append([]byte("_c:"), pkg...)
}

// Save writes a valid configuration of an extension, replacing the
// previous one.
func Save(db Store, pkg string, conf ValidMarshaler) error {
	if err := conf.Validate(); err != nil {
		return errors.Wrapf(err, "%s configuration", pkg)
	}
	raw, err := conf.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	return errors.Wrapf(db.Set(key(pkg), raw), "save %s configuration", pkg)
}

// Load reads the configuration of an extension. ErrNotFound is returned
// when it was never saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	raw, err := db.Get(key(pkg))
	switch {
	case err != nil:
		return errors.Wrapf(err, "load %s configuration", pkg)
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	return errors.Wrapf(dst.Unmarshal(raw), "unmarshal %s configuration", pkg)
}

// InitConfig saves the configuration of an extension found in the genesis
// under conf.<pkg>. A genesis without it is rejected.
func InitConfig(db Store, opts weave.Options, pkg string, conf Configuration) error {
	var all weave.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return errors.Wrapf(errors.ErrInput, "conf: %s", err)
	}
	if _, ok := all[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "genesis has no %s configuration", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "%s configuration: %s", pkg, err)
	}
	return Save(db, pkg, conf)
}
