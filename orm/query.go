package orm

import (
	"github.com/lastwill-labs/weave"
)

// queryPrefix loads every entry whose key starts with prefix, in key order.
func queryPrefix(db weave.ReadOnlyKVStore, prefix []byte) ([]weave.Model, error) {
	it, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var models []weave.Model
	for ; it.Valid(); err = it.Next() {
		if err != nil {
			return nil, err
		}
		models = append(models, weave.Pair(it.Key(), it.Value()))
	}
	return models, err
}

// prefixRange returns the iteration bounds covering all keys with the
// prefix. The end is the shortest key greater than every such key, or nil
// when the prefix is made of 0xFF bytes only.
func prefixRange(prefix []byte) (start, end []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	for n := len(prefix); n > 0; n-- {
		if prefix[n-1] != 0xFF {
			end = append([]byte(nil), prefix[:n]...)
			end[n-1]++
			return prefix, end
		}
	}
	return prefix, nil
}
