// Package assert holds the few test assertions shared across the
// repository. A failed assertion stops the test.
package assert

import (
	"reflect"
	"testing"

	"github.com/lastwill-labs/weave/errors"
)

// Tester is the part of testing.TB the value assertions need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil or a typed nil, for example a nil *Error.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails unless both values are deeply equal and of the same type.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("want panic")
		}
	}()
	fn()
}

// IsErr fails unless got matches want. A nil want accepts only nil.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if m, ok := want.(interface{ Is(error) bool }); ok && m.Is(got) {
		return
	}
	t.Fatalf("want %q error, got %+v", want, got)
}

// FieldError fails unless err holds exactly one error for the field and it
// matches want. With a nil want it fails if the field has any error.
func FieldError(t testing.TB, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	switch {
	case want == nil && len(found) != 0:
		t.Fatalf("want no %q error, got %q", field, found)
	case want == nil:
	case len(found) == 0:
		t.Fatalf("no %q error found", field)
	case len(found) > 1:
		t.Fatalf("want one %q error, got %d: %q", field, len(found), found)
	case !want.Is(found[0]):
		t.Fatalf("unexpected %q error: %q", field, found[0])
	}
}
