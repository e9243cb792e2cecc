package weave

import (
	"encoding/json"
	"testing"

	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/weavetest/assert"
)

func TestHexBytesJSON(t *testing.T) {
	var got struct {
		Root HexBytes `json:"root"`
	}
	assert.Nil(t, json.Unmarshal([]byte(`{"root": "0aff"}`), &got))
	assert.Equal(t, HexBytes{0x0a, 0xff}, got.Root)

	raw, err := json.Marshal(got)
	assert.Nil(t, err)
	assert.Equal(t, `{"root":"0AFF"}`, string(raw))

	err = json.Unmarshal([]byte(`{"root": "xyz"}`), &got)
	assert.IsErr(t, errors.ErrInput, err)
}
