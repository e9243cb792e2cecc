package app

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// ResultSet is the wire format of query results. The keys and the values
// of the found models travel as two result sets of the same length.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

func (r *ResultSet) Marshal() ([]byte, error) { return weave.EncodeBinary(r) }

func (r *ResultSet) Unmarshal(raw []byte) error { return weave.DecodeBinary(raw, r) }

func collect(models []weave.Model, field func(weave.Model) []byte) *ResultSet {
	res := &ResultSet{Results: make([][]byte, len(models))}
	for i, m := range models {
		res.Results[i] = field(m)
	}
	return res
}

// ResultsFromKeys returns the keys of the models.
func ResultsFromKeys(models []weave.Model) *ResultSet {
	return collect(models, func(m weave.Model) []byte { return m.Key })
}

// ResultsFromValues returns the values of the models.
func ResultsFromValues(models []weave.Model) *ResultSet {
	return collect(models, func(m weave.Model) []byte { return m.Value })
}

// JoinResults pairs the keys and values of a query response back into
// models.
func JoinResults(keys, values *ResultSet) ([]weave.Model, error) {
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrapf(errors.ErrState, "%d keys but %d values", len(keys.Results), len(values.Results))
	}
	models := make([]weave.Model, len(keys.Results))
	for i, k := range keys.Results {
		models[i] = weave.Pair(k, values.Results[i])
	}
	return models, nil
}

// UnmarshalOneResult loads the first value of a serialized result set into
// dst. An empty result set leaves dst untouched.
func UnmarshalOneResult(raw []byte, dst weave.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(raw); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return dst.Unmarshal(res.Results[0])
}
