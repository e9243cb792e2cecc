package weave

import (
	"reflect"

	"github.com/lastwill-labs/weave/errors"
	amino "github.com/tendermint/go-amino"
)

// cdc encodes every persisted model, message and transaction. Encoded
// structures must only contain concrete types, so no registration is needed.
var cdc = amino.NewCodec()

// EncodeBinary serializes the given structure.
func EncodeBinary(obj interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(obj)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot encode %T: %s", obj, err)
	}
	return bz, nil
}

// DecodeBinary deserializes the given bytes into the structure pointed by
// ptr. A structure holding only zero values encodes to no bytes, so empty
// input resets the destination.
func DecodeBinary(bz []byte, ptr interface{}) error {
	if len(bz) == 0 {
		v := reflect.ValueOf(ptr)
		if v.Kind() != reflect.Ptr || v.IsNil() {
			return errors.Wrapf(errors.ErrType, "cannot decode into %T", ptr)
		}
		v.Elem().Set(reflect.Zero(v.Elem().Type()))
		return nil
	}
	if err := cdc.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode %T: %s", ptr, err)
	}
	return nil
}
