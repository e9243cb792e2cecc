package gconf

import (
	"reflect"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/x"
)

// OwnedConfig is a configuration that can be changed only with the
// signature of its owner.
type OwnedConfig interface {
	Unmarshaler
	ValidMarshaler
	GetOwner() weave.Address
}

// UpdateConfigurationHandler applies configuration patches. The message
// must carry a Patch field holding a value of the configuration type. Zero
// fields of the patch leave the stored value unchanged.
type UpdateConfigurationHandler struct {
	pkg    string
	config reflect.Type
	auth   x.Authenticator
}

var _ weave.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns a handler patching the
// configuration of the given package. The configuration must exist, which
// is ensured by the genesis initialization.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:    pkg,
		config: reflect.TypeOf(config).Elem(),
		auth:   auth,
	}
}

func (h UpdateConfigurationHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) update(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	current := reflect.New(h.config).Interface().(OwnedConfig)
	if err := Load(db, h.pkg, current); err != nil {
		return errors.Wrap(err, "load configuration")
	}
	switch owner := current.GetOwner(); {
	case owner == nil:
		return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
	case !h.auth.HasAddress(ctx, owner):
		return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}

	patch, err := extractPatch(tx, h.config)
	if err != nil {
		return err
	}
	merge(reflect.ValueOf(current).Elem(), patch)
	if err := Save(db, h.pkg, current); err != nil {
		return errors.Wrap(err, "save configuration")
	}
	return nil
}

// extractPatch returns the struct value of the Patch field of the
// transaction message.
func extractPatch(tx weave.Tx, config reflect.Type) (reflect.Value, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return reflect.Value{}, errors.Wrap(err, "message")
	}
	if err := msg.Validate(); err != nil {
		return reflect.Value{}, err
	}

	container := reflect.ValueOf(msg)
	if container.Kind() != reflect.Ptr || container.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.Wrapf(errors.ErrInput, "unsupported message %T", msg)
	}
	field := container.Elem().FieldByName("Patch")
	switch {
	case !field.IsValid():
		return reflect.Value{}, errors.Wrapf(errors.ErrType, "%T has no Patch field", msg)
	case field.Type() != reflect.PtrTo(config):
		return reflect.Value{}, errors.Wrapf(errors.ErrType, "patch of %T does not match %s", msg, config)
	case field.IsNil():
		return reflect.Value{}, errors.Wrap(errors.ErrState, "patch is required")
	}
	return field.Elem(), nil
}

// merge copies every non zero field of patch into dst.
func merge(dst, patch reflect.Value) {
	for i := 0; i < dst.NumField(); i++ {
		f := patch.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		dst.Field(i).Set(f)
	}
}
