package errors

import (
	"io"
	"strings"
	"testing"
)

func TestABCInfo(t *testing.T) {
	cases := map[string]struct {
		err        error
		debug      bool
		wantCode   uint32
		wantPrefix string
	}{
		"plain registered error": {
			err:        ErrNotFound,
			wantPrefix: "not found",
			wantCode:   ErrNotFound.code,
		},
		"wrapped registered error": {
			err:        Wrap(Wrap(ErrNotFound, "foo"), "bar"),
			wantPrefix: "bar: foo: not found",
			wantCode:   ErrNotFound.code,
		},
		"nil is empty message": {
			err:      nil,
			wantCode: 0,
		},
		"nil registered error is not an error": {
			err:      (*Error)(nil),
			wantCode: 0,
		},
		"stdlib is generic message": {
			err:        io.EOF,
			wantPrefix: "internal error",
			wantCode:   1,
		},
		"stdlib returns error message in debug mode": {
			err:        io.EOF,
			debug:      true,
			wantPrefix: "EOF",
			wantCode:   1,
		},
		"wrapped stdlib is only a generic message": {
			err:        Wrap(io.EOF, "cannot read file"),
			wantPrefix: "internal error",
			wantCode:   1,
		},
		"wrapped stdlib is a full message in debug mode": {
			err:        Wrap(io.EOF, "cannot read file"),
			debug:      true,
			wantPrefix: "cannot read file: EOF",
			wantCode:   1,
		},
		"multi error uses the first code": {
			err:        Append(ErrUnauthorized, ErrEmpty),
			wantPrefix: "2 errors occurred",
			wantCode:   ErrUnauthorized.code,
		},
		"custom error": {
			err:        customErr{},
			wantPrefix: "custom",
			wantCode:   999,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if !strings.HasPrefix(log, tc.wantPrefix) {
				t.Errorf("want %q log prefix, got %q", tc.wantPrefix, log)
			}
			if tc.wantPrefix == "" && log != "" {
				t.Errorf("want empty log, got %q", log)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(ErrPanic.New("secret"), false); err.Error() != "internal error" {
		t.Fatalf("panic must be redacted, got %q", err)
	}
	if err := Redact(io.EOF, false); err.Error() != "internal error" {
		t.Fatalf("internal errors must be redacted, got %q", err)
	}
	if err := Redact(ErrNotFound, false); err != ErrNotFound {
		t.Fatalf("registered errors must be kept, got %q", err)
	}
	if err := Redact(io.EOF, true); err != io.EOF {
		t.Fatalf("debug mode must not redact, got %q", err)
	}
}

// customErr is a custom implementation of an error that provides an ABCICode
// method.
type customErr struct{}

func (customErr) ABCICode() uint32 { return 999 }

func (customErr) Error() string { return "custom" }

func TestABCIError(t *testing.T) {
	if err := ABCIError(SuccessABCICode, ""); err != nil {
		t.Fatalf("success code must not be an error: %v", err)
	}

	err := ABCIError(ErrNotFound.code, "cannot load escrow: not found")
	if !ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %v", err)
	}
	if got := err.Error(); got != "cannot load escrow: not found" {
		t.Fatalf("unexpected message %q", got)
	}
	if code, _ := ABCIInfo(err, false); code != ErrNotFound.code {
		t.Fatalf("want code %d, got %d", ErrNotFound.code, code)
	}

	unknown := ABCIError(987654, "")
	if ErrNotFound.Is(unknown) {
		t.Fatal("unknown code must not match a registered error")
	}
	if code, _ := ABCIInfo(unknown, true); code != internalABCICode {
		t.Fatalf("want internal code, got %d", code)
	}
}
