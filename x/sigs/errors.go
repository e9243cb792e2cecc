package sigs

import (
	"github.com/lastwill-labs/weave/errors"
)

// ErrInvalidSequence is returned when a signature carries a sequence that
// does not match the one stored for the signer.
var ErrInvalidSequence = errors.Register(20, "invalid sequence number")
