package errors

import (
	"errors"
	"fmt"
)

const (
	// SuccessABCICode declares an ABCI response uses 0 to signal that the
	// processing was successful and no error is returned.
	SuccessABCICode = 0

	// All errors that do not provide an ABCI code are clubbed under an
	// internal error code and a generic message.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the ABCI error information as consumed by the tendermint
// client. Returned code and log message should be used as an ABCI response.
//
// Errors that do not provide an ABCI code are internal. Outside of the debug
// mode their message is replaced with a generic "internal error".
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}

	if code := abciCode(err); code != internalABCICode {
		if debug {
			// %+v might produce a stack trace.
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalABCICode, fmt.Sprintf("%+v", err)
	}
	return internalABCICode, internalABCILog
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the ABCI code carried by the given error or any error it
// wraps. Unknown errors are internal.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalABCICode
		}
	}
}

// Redact replaces all errors that do not originate from a registered error
// with a generic internal error instance. Panics are redacted as well, as
// their message may reveal system details.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) {
		return errors.New(internalABCILog)
	}
	if abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}

// ABCIError returns an error matching the registered error of the given
// ABCI code, so that results received from a node can be tested with Is.
// Unknown codes are returned as internal errors.
func ABCIError(code uint32, log string) error {
	if code == SuccessABCICode {
		return nil
	}
	root, ok := usedCodes[code]
	if !ok {
		root = usedCodes[internalABCICode]
	}
	return &remoteError{root: root, log: log}
}

// remoteError is an error decoded from an ABCI response. The log already
// contains the root description.
type remoteError struct {
	root *Error
	log  string
}

func (e *remoteError) Error() string {
	if e.log == "" {
		return e.root.desc
	}
	return e.log
}

func (e *remoteError) Cause() error {
	return e.root
}
