package weavetest

import (
	"testing"

	"github.com/lastwill-labs/weave/store/iavl"
)

// CommitKVStore returns a disk backed iavl store living in a temporary
// directory of the test. Use it instead of a memory store to exercise
// commits and persisted versions.
func CommitKVStore(t testing.TB) *iavl.CommitStore {
	t.Helper()
	db, err := iavl.NewCommitStore(t.TempDir(), "escrow")
	if err != nil {
		t.Fatalf("commit store: %s", err)
	}
	return db
}
