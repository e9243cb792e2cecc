package assert

import (
	"testing"

	"github.com/lastwill-labs/weave/errors"
)

func TestAssertions(t *testing.T) {
	var nilErr *errors.Error
	invalidRoot := errors.Field("Root", errors.ErrInput, "not a digest")

	cases := map[string]struct {
		check    func(testing.TB)
		wantFail bool
	}{
		"typed nil pointer is nil": {
			check: func(tb testing.TB) { Nil(tb, nilErr) },
		},
		"integer is not nil": {
			check:    func(tb testing.TB) { Nil(tb, 42) },
			wantFail: true,
		},
		"equal digests": {
			check: func(tb testing.TB) { Equal(tb, []byte("root"), []byte("root")) },
		},
		"equal value of another type": {
			check:    func(tb testing.TB) { Equal(tb, int64(1), int32(1)) },
			wantFail: true,
		},
		"panic is recovered": {
			check: func(tb testing.TB) { Panics(tb, func() { panic("boom") }) },
		},
		"missing panic": {
			check:    func(tb testing.TB) { Panics(tb, func() {}) },
			wantFail: true,
		},
		"wrapped error matches": {
			check: func(tb testing.TB) { IsErr(tb, errors.ErrEmpty, errors.Wrap(errors.ErrEmpty, "root")) },
		},
		"nil matches nil": {
			check: func(tb testing.TB) { IsErr(tb, nil, nil) },
		},
		"error where nil expected": {
			check:    func(tb testing.TB) { IsErr(tb, nil, errors.ErrEmpty) },
			wantFail: true,
		},
		"field error is found": {
			check: func(tb testing.TB) { FieldError(tb, invalidRoot, "Root", errors.ErrInput) },
		},
		"other field has no error": {
			check: func(tb testing.TB) { FieldError(tb, invalidRoot, "Proof", nil) },
		},
		"unexpected field error": {
			check:    func(tb testing.TB) { FieldError(tb, invalidRoot, "Root", nil) },
			wantFail: true,
		},
		"field error of another kind": {
			check:    func(tb testing.TB) { FieldError(tb, invalidRoot, "Root", errors.ErrEmpty) },
			wantFail: true,
		},
		"two errors for one field": {
			check: func(tb testing.TB) {
				FieldError(tb, errors.Append(invalidRoot, invalidRoot), "Root", errors.ErrInput)
			},
			wantFail: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := &recorder{TB: t}
			tc.check(rec)
			if failed := rec.failures > 0; failed != tc.wantFail {
				t.Fatalf("want failure %v, got %d failures", tc.wantFail, rec.failures)
			}
		})
	}
}

// recorder counts failures instead of stopping the test.
type recorder struct {
	testing.TB
	failures int
}

func (r *recorder) Fatal(args ...interface{}) {
	r.TB.Log(args...)
	r.failures++
}

func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.TB.Logf(format, args...)
	r.failures++
}
