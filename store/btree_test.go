package store

import (
	"testing"

	"github.com/lastwill-labs/weave/weavetest/assert"
)

func makeMemStore() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestCacheableStore(t *testing.T) {
	NewTestSuite(makeMemStore).Run(t)
}

func TestNestedCacheWrapWritesThrough(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	inner := outer.CacheWrap()

	assert.Nil(t, inner.Set([]byte("vault"), []byte("funded")))
	assert.Nil(t, inner.Write())

	got, err := base.Get([]byte("vault"))
	assert.Nil(t, err)
	assert.Equal(t, []byte(nil), got)

	assert.Nil(t, outer.Write())
	got, err = base.Get([]byte("vault"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("funded"), got)
}

func TestSliceIteratorPanicsPastEnd(t *testing.T) {
	it := NewSliceIterator([]Model{{Key: []byte("a"), Value: []byte("1")}})
	assert.Equal(t, true, it.Valid())
	assert.Nil(t, it.Next())
	assert.Equal(t, false, it.Valid())
	assert.Panics(t, func() { it.Key() })
}
