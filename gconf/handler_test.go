package gconf

import (
	"context"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/store"
	"github.com/lastwill-labs/weave/weavetest"
	"github.com/lastwill-labs/weave/weavetest/assert"
)

type testConfigMsg struct {
	Metadata *weave.Metadata
	Patch    *testConfig
}

func (*testConfigMsg) Path() string                { return "test/update_configuration" }
func (m *testConfigMsg) Marshal() ([]byte, error)  { return weave.EncodeBinary(m) }
func (m *testConfigMsg) Unmarshal(bz []byte) error { return weave.DecodeBinary(bz, m) }
func (m *testConfigMsg) Validate() error           { return m.Metadata.Validate() }

func TestUpdateConfigurationHandler(t *testing.T) {
	owner := weavetest.NewCondition()
	stranger := weavetest.NewCondition()
	meta := &weave.Metadata{Schema: 1}

	cases := map[string]struct {
		Init       *testConfig
		Msg        weave.Msg
		Signer     weave.Condition
		WantErr    *errors.Error
		WantConfig *testConfig
	}{
		"owner patches the configuration": {
			Init:   &testConfig{Metadata: meta, Owner: owner.Address(), Num: 5, Str: "foo"},
			Msg:    &testConfigMsg{Metadata: meta, Patch: &testConfig{Num: 9}},
			Signer: owner,
			WantConfig: &testConfig{
				Metadata: meta,
				Owner:    owner.Address(),
				Num:      9,
				Str:      "foo",
			},
		},
		"only the owner can patch": {
			Init:    &testConfig{Metadata: meta, Owner: owner.Address(), Num: 5},
			Msg:     &testConfigMsg{Metadata: meta, Patch: &testConfig{Num: 9}},
			Signer:  stranger,
			WantErr: errors.ErrUnauthorized,
		},
		"configuration without owner is frozen": {
			Init:    &testConfig{Metadata: meta, Num: 5},
			Msg:     &testConfigMsg{Metadata: meta, Patch: &testConfig{Num: 9}},
			Signer:  owner,
			WantErr: errors.ErrUnauthorized,
		},
		"missing configuration": {
			Msg:     &testConfigMsg{Metadata: meta, Patch: &testConfig{Num: 1}},
			Signer:  owner,
			WantErr: errors.ErrNotFound,
		},
		"clearing a field is not possible": {
			Init:   &testConfig{Metadata: meta, Owner: owner.Address(), Num: 5, Str: "foo"},
			Msg:    &testConfigMsg{Metadata: meta, Patch: &testConfig{Str: ""}},
			Signer: owner,
			WantConfig: &testConfig{
				Metadata: meta,
				Owner:    owner.Address(),
				Num:      5,
				Str:      "foo",
			},
		},
		"patch is required": {
			Init:    &testConfig{Metadata: meta, Owner: owner.Address(), Num: 5},
			Msg:     &testConfigMsg{Metadata: meta},
			Signer:  owner,
			WantErr: errors.ErrState,
		},
		"invalid result is rejected": {
			Init:    &testConfig{Metadata: meta, Owner: owner.Address(), Num: 5},
			Msg:     &testConfigMsg{Metadata: meta, Patch: &testConfig{Num: -3}},
			Signer:  owner,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.Init != nil {
				assert.Nil(t, Save(db, "test", tc.Init))
			}
			auth := &weavetest.Auth{Signer: tc.Signer}
			h := NewUpdateConfigurationHandler("test", &testConfig{}, auth)
			tx := &weavetest.Tx{Msg: tc.Msg}

			cache := db.CacheWrap()
			if _, err := h.Check(context.Background(), cache, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()

			if _, err := h.Deliver(context.Background(), db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantConfig != nil {
				var got testConfig
				assert.Nil(t, Load(db, "test", &got))
				assert.Equal(t, tc.WantConfig, &got)
			}
		})
	}
}
