package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRun(t *testing.T) {
	cases := map[string]struct {
		args     []string
		wantErr  string
		wantText string
	}{
		"version": {
			args:     []string{"version"},
			wantText: weave.Version,
		},
		"help lists commands": {
			args:     []string{"-home", t.Name(), "help"},
			wantText: "validate",
		},
		"missing command": {
			wantErr:  "missing command",
			wantText: "Commands:",
		},
		"unknown command": {
			args:    []string{"restart"},
			wantErr: "unknown command: restart",
		},
		"unknown flag": {
			args:    []string{"-verbose", "start"},
			wantErr: "flag provided but not defined",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var out bytes.Buffer
			err := run(log.NewNopLogger(), tc.args, &out)
			if tc.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
			assert.True(t, strings.Contains(out.String(), tc.wantText), out.String())
		})
	}
}
