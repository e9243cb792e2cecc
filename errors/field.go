package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attributes err to the named attribute of a validated value, for
// example Beneficiary or Deposit.Ticker. A nil err gives nil.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{field: fieldName, desc: description, parent: err}
}

// AppendField appends a field error to the collected errors. Nil values are
// ignored.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	field  string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.field, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.field }

// FieldErrors returns the errors attributed to the field, searching
// wrapped and collected errors. Errors nested in a matching field error
// are not searched.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	var walk func(error)
	walk = func(err error) {
		for !isNilErr(err) {
			switch e := err.(type) {
			case *fieldError:
				if e.field == fieldName {
					found = append(found, e)
					return
				}
			case unpacker:
				for _, child := range e.Unpack() {
					walk(child)
				}
				return
			}
			c, ok := err.(causer)
			if !ok {
				return
			}
			err = c.Cause()
		}
	}
	walk(err)
	return found
}
