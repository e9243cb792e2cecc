package weave

import (
	"testing"

	"github.com/lastwill-labs/weave/errors"
	"github.com/stretchr/testify/assert"
)

func TestLoadMsg(t *testing.T) {
	refresh := &refreshMsg{Root: []byte("root")}

	cases := map[string]struct {
		tx      Tx
		dest    interface{}
		want    interface{}
		wantErr *errors.Error
	}{
		"message is copied": {
			tx:   &singleMsgTx{msg: refresh},
			dest: &refreshMsg{},
			want: refresh,
		},
		"previous content is replaced": {
			tx:   &singleMsgTx{msg: &cancelMsg{}},
			dest: &cancelMsg{Reason: "stale"},
			want: &cancelMsg{},
		},
		"transaction without message": {
			tx:      &singleMsgTx{},
			wantErr: errors.ErrState,
		},
		"message fails validation": {
			tx:      &singleMsgTx{msg: &refreshMsg{}},
			dest:    &refreshMsg{},
			wantErr: errors.ErrEmpty,
		},
		"destination of another type": {
			tx:      &singleMsgTx{msg: refresh},
			dest:    &cancelMsg{},
			wantErr: errors.ErrType,
		},
		"destination is not a pointer": {
			tx:      &singleMsgTx{msg: refresh},
			dest:    refreshMsg{},
			wantErr: errors.ErrType,
		},
		"destination is a nil pointer": {
			tx:      &singleMsgTx{msg: refresh},
			dest:    (*refreshMsg)(nil),
			wantErr: errors.ErrType,
		},
		"destination is nil": {
			tx:      &singleMsgTx{msg: refresh},
			wantErr: errors.ErrType,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := LoadMsg(tc.tx, tc.dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, tc.dest)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "test/refresh", GetPath(&singleMsgTx{msg: &refreshMsg{}}))
	assert.Equal(t, "(missing)", GetPath(&singleMsgTx{}))
}

type singleMsgTx struct {
	Tx
	msg Msg
}

func (tx *singleMsgTx) GetMsg() (Msg, error) {
	return tx.msg, nil
}

type refreshMsg struct {
	Msg
	Root []byte
}

func (m *refreshMsg) Path() string { return "test/refresh" }

func (m *refreshMsg) Validate() error {
	if len(m.Root) == 0 {
		return errors.Wrap(errors.ErrEmpty, "root")
	}
	return nil
}

type cancelMsg struct {
	Msg
	Reason string
}

func (m *cancelMsg) Path() string    { return "test/cancel" }
func (m *cancelMsg) Validate() error { return nil }
