package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored. If
// only one error is left it is returned as is.
//
// The ABCI code of the result is the code of the first error, so validation
// functions can collect everything while still being matched with Is.
func Append(errs ...error) error {
	var collected []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			collected = append(collected, m.errs...)
			continue
		}
		collected = append(collected, e)
	}

	switch len(collected) {
	case 0:
		return nil
	case 1:
		return collected[0]
	default:
		return &multiErr{errs: collected}
	}
}

type unpacker interface {
	Unpack() []error
}

type multiErr struct {
	errs []error
}

// Unpack returns all collected errors.
func (m *multiErr) Unpack() []error {
	return m.errs
}

// ABCICode returns the code of the first error.
func (m *multiErr) ABCICode() uint32 {
	return abciCode(m.errs[0])
}

func (m *multiErr) Error() string {
	msgs := make([]string, len(m.errs))
	for i, e := range m.errs {
		msgs[i] = fmt.Sprintf("* %s", e)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errs), strings.Join(msgs, "\n\t"))
}
