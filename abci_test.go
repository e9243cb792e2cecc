package weave_test

import (
	"fmt"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/common"
)

func TestCreateErrorResult(t *testing.T) {
	cases := map[string]struct {
		err     error
		debug   bool
		wantLog string
		code    uint32
	}{
		"stdlib error is redacted": {
			err:     fmt.Errorf("base"),
			wantLog: "internal error",
			code:    1,
		},
		"registered error is exposed": {
			err:     errors.Wrap(errors.ErrUnauthorized, "nonce"),
			wantLog: "nonce: unauthorized",
			code:    errors.ErrUnauthorized.ABCICode(),
		},
		"debug mode exposes internal errors": {
			err:     fmt.Errorf("base"),
			debug:   true,
			wantLog: "base",
			code:    1,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			dres := weave.DeliverTxError(tc.err, tc.debug)
			assert.True(t, dres.IsErr())
			assert.Contains(t, dres.Log, tc.wantLog)
			assert.Contains(t, dres.Log, "cannot deliver tx")
			assert.Equal(t, tc.code, dres.Code)

			cres := weave.CheckTxError(tc.err, tc.debug)
			assert.True(t, cres.IsErr())
			assert.Contains(t, cres.Log, tc.wantLog)
			assert.Equal(t, tc.code, cres.Code)
		})
	}
}

func TestResultsToABCI(t *testing.T) {
	tags := []common.KVPair{{Key: []byte("action"), Value: []byte("create")}}
	dres := weave.DeliverOrError(&weave.DeliverResult{Data: []byte("addr"), Log: "ok", Tags: tags}, nil, false)
	assert.False(t, dres.IsErr())
	assert.Equal(t, []byte("addr"), dres.Data)
	assert.Equal(t, tags, dres.Tags)

	cres := weave.CheckOrError(weave.NewCheck(50, "checked"), nil, false)
	assert.False(t, cres.IsErr())
	assert.Equal(t, int64(50), cres.GasWanted)
	assert.Equal(t, "checked", cres.Log)

	eres := weave.CheckOrError(nil, errors.ErrEmpty, false)
	assert.True(t, eres.IsErr())
	assert.Equal(t, errors.ErrEmpty.ABCICode(), eres.Code)
}
