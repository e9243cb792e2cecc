package weavetest

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/lastwill-labs/weave"
	abci "github.com/tendermint/tendermint/abci/types"
)

// WeaveRunner drives an ABCI application the way a tendermint node would,
// with a block clock controlled by the test.
type WeaveRunner struct {
	t       testing.TB
	app     abci.Application
	chainID string
	height  int64
	now     time.Time
}

// NewWeaveRunner returns a runner creating blocks of the given chain. The
// first block is created at now.
func NewWeaveRunner(t testing.TB, app abci.Application, chainID string, now time.Time) *WeaveRunner {
	return &WeaveRunner{t: t, app: app, chainID: chainID, now: now.UTC()}
}

// Now returns the time of the next block.
func (w *WeaveRunner) Now() time.Time { return w.now }

// Advance moves the block clock forward.
func (w *WeaveRunner) Advance(d time.Duration) { w.now = w.now.Add(d) }

// InitChain loads the JSON serialized genesis in its own block. The test
// fails if the genesis leaves the state untouched.
func (w *WeaveRunner) InitChain(genesis interface{}) {
	w.t.Helper()
	state, err := json.Marshal(genesis)
	if err != nil {
		w.t.Fatalf("cannot serialize genesis: %s", err)
	}
	changed := w.InBlock(func(*WeaveRunner) {
		w.app.InitChain(abci.RequestInitChain{Time: w.now, ChainId: w.chainID, AppStateBytes: state})
	})
	if !changed {
		w.t.Fatal("genesis did not change the state")
	}
}

// CheckTx serializes and checks the transaction. The response is returned
// as is, whatever its code.
func (w *WeaveRunner) CheckTx(tx weave.Tx) abci.ResponseCheckTx {
	w.t.Helper()
	return w.app.CheckTx(w.serialize(tx))
}

// DeliverTx serializes and delivers the transaction. The response is
// returned as is, whatever its code.
func (w *WeaveRunner) DeliverTx(tx weave.Tx) abci.ResponseDeliverTx {
	w.t.Helper()
	return w.app.DeliverTx(w.serialize(tx))
}

func (w *WeaveRunner) serialize(tx weave.Tx) []byte {
	w.t.Helper()
	raw, err := tx.Marshal()
	if err != nil {
		w.t.Fatalf("cannot serialize transaction: %s", err)
	}
	return raw
}

// InBlock wraps the transactions sent by fn in a committed block at the
// current clock. It returns true if the app hash changed.
func (w *WeaveRunner) InBlock(fn func(*WeaveRunner)) bool {
	w.t.Helper()
	w.height++
	before := w.app.Info(abci.RequestInfo{}).LastBlockAppHash

	w.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{ChainID: w.chainID, Height: w.height, Time: w.now},
	})
	fn(w)
	w.app.EndBlock(abci.RequestEndBlock{Height: w.height})

	return !bytes.Equal(before, w.app.Commit().Data)
}

// Query reads the last committed state.
func (w *WeaveRunner) Query(path string, data []byte) abci.ResponseQuery {
	return w.app.Query(abci.RequestQuery{Path: path, Data: data})
}
