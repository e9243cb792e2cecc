package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/lastwill-labs/weave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBase() (store.CacheableKVStore, func()) {
	commit, cleanup := makeCommitStore()
	return commit.Adapter(), cleanup
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }
	commit, err := NewCommitStore(tmpDir, "base")
	if err != nil {
		cleanup()
		panic(err)
	}
	return commit, cleanup
}

func TestCacheableStore(t *testing.T) {
	store.NewTestSuite(makeBase).Run(t)
}

func TestCommitOverwrite(t *testing.T) {
	commit, cleanup := makeCommitStore()
	defer cleanup()

	k, v, v2 := []byte("vault"), []byte("locked"), []byte("released")

	// nothing committed yet
	got, err := commit.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)

	c := commit.CacheWrap()
	require.NoError(t, c.Set(k, v))
	require.NoError(t, c.Write())

	// staged, but not committed
	got, err = commit.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)

	id, err := commit.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)

	got, err = commit.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	c = commit.CacheWrap()
	require.NoError(t, c.Set(k, v2))
	require.NoError(t, c.Write())
	id2, err := commit.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2.Version)
	assert.NotEqual(t, id.Hash, id2.Hash)

	got, err = commit.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v2, got)

	latest, err := commit.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, id2, latest)
}

func TestMockCommitStoreStartsEmpty(t *testing.T) {
	mem := MockCommitStore()
	require.NoError(t, mem.LoadLatestVersion())
	id, err := mem.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(0), id.Version)

	c := mem.CacheWrap()
	require.NoError(t, c.Set([]byte("escrow"), []byte("record")))
	c.Discard()

	got, err := mem.Adapter().Get([]byte("escrow"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
