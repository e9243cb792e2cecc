package weave

import "github.com/lastwill-labs/weave/errors"

// Metadata is attached to every persisted model and message. Schema is the
// version of the entity layout and must always be set.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the metadata does not declare a schema.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrSchema, "metadata missing")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrSchema, "schema version must be at least 1")
	}
	return nil
}

// Copy returns a copy of this object.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}
