package cash

import (
	"encoding/json"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/store"
	"github.com/lastwill-labs/weave/weavetest"
	"github.com/lastwill-labs/weave/weavetest/assert"
)

func TestGenesis(t *testing.T) {
	const genesis = `{
		"cash": [
			{
				"address": "b1ca7e78f74423ae01da3b51e676934d9105f282",
				"coins": ["12.5 ETH", {"whole": 1, "ticker": "BTC"}]
			}
		]
	}`

	var opts weave.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	addr := weavetest.ParseAddress(t, "b1ca7e78f74423ae01da3b51e676934d9105f282")
	got, err := NewController().Balance(db, addr)
	assert.Nil(t, err)
	want := coin.Coins{coin.NewCoinp(1, 0, "BTC"), coin.NewCoinp(12, 500000000, "ETH")}
	assert.Equal(t, true, want.Equals(got))
}

func TestGenesisInvalidAddress(t *testing.T) {
	opts := weave.Options{
		"cash": []byte(`[{"address": "", "coins": ["1 ETH"]}]`),
	}
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.IsErr(t, errors.ErrInput, err)
}
