package escrow

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

var queryPaths = []string{
	"/escrows",
	"/escrows/beneficiary",
	"/escrows/verifier",
}

// RegisterQuery exposes records under "/escrows", "/escrows/beneficiary"
// and "/escrows/verifier". Returned records never contain the secret or the
// key material.
func RegisterQuery(qr weave.QueryRouter) {
	raw := weave.NewQueryRouter()
	NewBucket().Register("escrows", raw)
	for _, path := range queryPaths {
		qr.Register(path, redactingQuery{next: raw.Handler(path)})
	}
}

type redactingQuery struct {
	next weave.QueryHandler
}

var _ weave.QueryHandler = redactingQuery{}

func (q redactingQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	models, err := q.next.Query(db, mod, data)
	if err != nil {
		return nil, err
	}
	for i, m := range models {
		if m.Value == nil {
			continue
		}
		var r Record
		if err := r.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrap(err, "cannot decode escrow")
		}
		bz, err := r.Redact().Marshal()
		if err != nil {
			return nil, errors.Wrap(err, "cannot encode escrow")
		}
		models[i].Value = bz
	}
	return models, nil
}
