package weave

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/lastwill-labs/weave/errors"
)

// HexBytes is a byte slice that is represented as an upper case hex string
// in JSON, instead of the default base64.
type HexBytes []byte

// MarshalJSON encodes the bytes as hex.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(h)))
}

// UnmarshalJSON accepts a hex string of any case.
func (h *HexBytes) UnmarshalJSON(src []byte) error {
	var s string
	if err := json.Unmarshal(src, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "hex must be a string")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "invalid hex: %s", err)
	}
	*h = raw
	return nil
}

// String returns the upper case hex representation.
func (h HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(h))
}
