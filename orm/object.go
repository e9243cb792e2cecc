package orm

import (
	"reflect"

	"github.com/lastwill-labs/weave/errors"
)

// SimpleObj is the Object implementation used by all buckets: a primary
// key and the model stored under it.
type SimpleObj struct {
	key   []byte
	value Model
}

var _ Object = (*SimpleObj)(nil)

func NewSimpleObj(key []byte, value Model) *SimpleObj {
	return &SimpleObj{key: key, value: value}
}

func (o SimpleObj) Key() []byte  { return o.key }
func (o SimpleObj) Value() Model { return o.value }

func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Validate requires both the key and the value and validates the value.
func (o SimpleObj) Validate() error {
	switch {
	case len(o.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "required")
	case o.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "required")
	}
	return o.value.Validate()
}

// Clone returns an object with the same key and a new zero value of the
// model type, ready to be unmarshaled into.
func (o *SimpleObj) Clone() Object {
	zero := reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(Model)
	var key []byte
	if len(o.key) != 0 {
		key = append(key, o.key...)
	}
	return &SimpleObj{key: key, value: zero}
}
