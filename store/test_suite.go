package store

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/lastwill-labs/weave/weavetest/assert"
)

// TestStoreConstructor returns an empty store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// TestSuite runs the behaviour every CacheableKVStore implementation must
// share against stores built by the constructor.
type TestSuite struct {
	newStore TestStoreConstructor
}

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{newStore: constructor}
}

// Run executes all checks as subtests.
func (s *TestSuite) Run(t *testing.T) {
	t.Run("cache layers", s.CacheLayers)
	t.Run("cache conflicts", s.CacheConflicts)
	t.Run("iteration", s.Iteration)
}

// CacheLayers checks that cached changes reach the parent only on Write.
func (s *TestSuite) CacheLayers(t *testing.T) {
	base, cleanup := s.newStore()
	defer cleanup()

	testator, beneficiary, verifier := []byte("testator"), []byte("beneficiary"), []byte("verifier")

	assertStored(t, base, testator, nil)
	assert.Nil(t, base.Set(testator, []byte("alive")))
	assertStored(t, base, testator, []byte("alive"))

	cache := base.CacheWrap()
	assertStored(t, cache, testator, []byte("alive"))
	assert.Nil(t, cache.Set(beneficiary, []byte("waiting")))
	assertStored(t, cache, beneficiary, []byte("waiting"))
	assertStored(t, base, beneficiary, nil)
	assert.Nil(t, cache.Write())
	assertStored(t, base, beneficiary, []byte("waiting"))

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(verifier, []byte("signed")))
	discarded.Discard()
	assertStored(t, base, verifier, nil)

	deleting := base.CacheWrap()
	assert.Nil(t, deleting.Delete(testator))
	assertStored(t, base, testator, []byte("alive"))
	assert.Nil(t, deleting.Write())
	assertStored(t, base, testator, nil)
	assertStored(t, base, beneficiary, []byte("waiting"))
}

// CacheConflicts checks that a cache can overwrite and delete parent values.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	base, cleanup := s.newStore()
	defer cleanup()

	records := escrowModels(4)
	assert.Nil(t, SetOp(records[1].Key, records[1].Value).Apply(base))
	assert.Nil(t, SetOp(records[2].Key, records[2].Value).Apply(base))

	cache := base.CacheWrap()
	ops := []Op{
		SetOp(records[1].Key, []byte("executed")),
		DelOp(records[2].Key),
		SetOp(records[3].Key, records[3].Value),
	}
	for _, op := range ops {
		assert.Nil(t, op.Apply(cache))
	}

	assertStored(t, base, records[1].Key, records[1].Value)
	assertStored(t, base, records[2].Key, records[2].Value)
	assertStored(t, base, records[3].Key, nil)

	want := map[int][]byte{1: []byte("executed"), 2: nil, 3: records[3].Value}
	for i, value := range want {
		assertStored(t, cache, records[i].Key, value)
	}
	assert.Nil(t, cache.Write())
	for i, value := range want {
		assertStored(t, base, records[i].Key, value)
	}
}

// Iteration checks that iterators merge the cache with its parent in both
// directions and respect the range bounds.
func (s *TestSuite) Iteration(t *testing.T) {
	m := escrowModels(5)
	executed := func(i int) Model {
		return Model{Key: m[i].Key, Value: []byte("executed")}
	}

	cases := map[string]struct {
		parent, cache []Op
		start, end    []byte
		want          []Model
	}{
		"cache only": {
			cache: setOps(m[2], m[0], m[1]),
			want:  m[:3],
		},
		"parent only": {
			parent: setOps(m[0], m[1], m[2]),
			start:  m[1].Key,
			want:   m[1:3],
		},
		"both layers": {
			parent: setOps(m[0], m[3]),
			cache:  setOps(m[1], m[4]),
			end:    m[4].Key,
			want:   []Model{m[0], m[1], m[3]},
		},
		"cache overwrites parent": {
			parent: setOps(m[0], m[1], m[2]),
			cache:  setOps(executed(0), executed(2), m[3]),
			want:   []Model{executed(0), m[1], executed(2), m[3]},
		},
		"deleted entries are skipped": {
			parent: setOps(m[0], m[2], m[3]),
			cache:  []Op{DelOp(m[0].Key), DelOp(m[1].Key), DelOp(m[3].Key)},
			want:   []Model{m[2]},
		},
		"empty range": {
			parent: setOps(m[0], m[1], m[2]),
			start:  m[1].Key,
			end:    m[1].Key,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.newStore()
			defer cleanup()

			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(base))
			}
			cache := base.CacheWrap()
			for _, op := range tc.cache {
				assert.Nil(t, op.Apply(cache))
			}

			it, err := cache.Iterator(tc.start, tc.end)
			assert.Nil(t, err)
			assertModels(t, tc.want, it)

			it, err = cache.ReverseIterator(tc.start, tc.end)
			assert.Nil(t, err)
			reversed := make([]Model, len(tc.want))
			for i, model := range tc.want {
				reversed[len(tc.want)-1-i] = model
			}
			assertModels(t, reversed, it)
		})
	}
}

// escrowModels returns models with ascending keys.
func escrowModels(n int) []Model {
	models := make([]Model, n)
	for i := range models {
		models[i] = Model{
			Key:   []byte(fmt.Sprintf("esc:%04d", i)),
			Value: []byte(fmt.Sprintf("active since %d", 1000+i)),
		}
	}
	return models
}

func setOps(models ...Model) []Op {
	ops := make([]Op, len(models))
	for i, m := range models {
		ops[i] = SetOp(m.Key, m.Value)
	}
	return ops
}

func assertStored(t testing.TB, db ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := db.Get(key)
	assert.Nil(t, err)
	if !bytes.Equal(want, got) {
		t.Fatalf("want %q stored under %q, got %q", want, key, got)
	}
	has, err := db.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

func assertModels(t testing.TB, want []Model, it Iterator) {
	t.Helper()
	defer it.Close()

	var got []Model
	for ; it.Valid(); assert.Nil(t, it.Next()) {
		got = append(got, Model{Key: it.Key(), Value: it.Value()})
	}
	if len(got) != len(want) {
		t.Fatalf("want %d models, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) || !bytes.Equal(want[i].Value, got[i].Value) {
			t.Fatalf("want %q=%q at %d, got %q=%q", want[i].Key, want[i].Value, i, got[i].Key, got[i].Value)
		}
	}
}
