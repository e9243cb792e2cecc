package gconf

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// RegisterQuery exposes all stored configurations under "/_c". The query
// data is the package name, eg. "escrow".
func RegisterQuery(qr weave.QueryRouter) {
	qr.Register("/_c", queryHandler{})
}

type queryHandler struct{}

var _ weave.QueryHandler = queryHandler{}

func (queryHandler) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
	k := key(string(data))
	value, err := db.Get(k)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return []weave.Model{weave.Pair(k, value)}, nil
}
