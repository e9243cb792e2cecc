package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/gconf"
	"github.com/lastwill-labs/weave/store"
	"github.com/lastwill-labs/weave/weavetest"
	"github.com/lastwill-labs/weave/weavetest/assert"
	"github.com/lastwill-labs/weave/x/cash"
	"github.com/lastwill-labs/weave/x/liveness"
)

var (
	genesisTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	meta        = &weave.Metadata{Schema: 1}
)

type routes map[string]weave.Handler

func (r routes) Handle(path string, h weave.Handler) {
	r[path] = h
}

// fixture is a chain with the escrow extension and three funded parties.
type fixture struct {
	t    testing.TB
	db   weave.CacheableKVStore
	auth *weavetest.CtxAuth
	bank cash.BaseController
	h    routes

	testator    weave.Condition
	beneficiary weave.Condition
	verifier    weave.Condition
	owner       weave.Condition
}

func newFixture(t testing.TB, conf *Configuration, roots liveness.RootSource) *fixture {
	t.Helper()
	return newFixtureOn(t, store.MemStore(), conf, roots)
}

// newFixtureOn is newFixture using the given database.
func newFixtureOn(t testing.TB, db weave.CacheableKVStore, conf *Configuration, roots liveness.RootSource) *fixture {
	t.Helper()
	f := &fixture{
		t:           t,
		db:          db,
		auth:        &weavetest.CtxAuth{Key: "escrow"},
		bank:        cash.NewController(),
		h:           make(routes),
		testator:    weavetest.NewCondition(),
		beneficiary: weavetest.NewCondition(),
		verifier:    weavetest.NewCondition(),
		owner:       weavetest.NewCondition(),
	}
	if conf == nil {
		conf = &Configuration{
			Metadata:      meta,
			Owner:         f.owner.Address(),
			MaxSecretSize: MaxSecretSize,
		}
	}
	assert.Nil(t, gconf.Save(f.db, packageName, conf))
	if roots == nil {
		roots = liveness.StaticRoot(nil)
	}
	RegisterRoutes(f.h, f.auth, f.bank, roots)

	assert.Nil(t, f.bank.IssueCoins(f.db, f.testator.Address(), coin.NewCoin(10, 0, "SOL")))
	return f
}

// deliver runs the message through Check and Deliver at the given block
// time, the way the application does: state changes of a failed message
// are discarded.
func (f *fixture) deliver(at time.Time, msg weave.Msg, signers ...weave.Condition) (*weave.DeliverResult, error) {
	f.t.Helper()
	h, ok := f.h[msg.Path()]
	if !ok {
		f.t.Fatalf("no handler for %q", msg.Path())
	}
	ctx := weave.WithBlockTime(context.Background(), at)
	ctx = f.auth.SetConditions(ctx, signers...)
	tx := &weavetest.Tx{Msg: msg}

	check := f.db.CacheWrap()
	_, checkErr := h.Check(ctx, check, tx)
	check.Discard()

	cache := f.db.CacheWrap()
	res, err := h.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
	} else if werr := cache.Write(); werr != nil {
		f.t.Fatalf("cannot write: %s", werr)
	}

	// Deliver can fail on state Check does not inspect, the opposite is
	// a bug.
	if checkErr != nil && err == nil {
		f.t.Fatalf("check returned %v, deliver returned %v", checkErr, err)
	}
	return res, err
}

func (f *fixture) createMsg() *CreateMsg {
	return &CreateMsg{
		Metadata:             meta,
		Beneficiary:          f.beneficiary.Address(),
		Verifier:             f.verifier.Address(),
		IdentityHash:         digest(1),
		EmailHash:            digest(2),
		DocumentIDHash:       digest(3),
		ContentID:            []byte("ipfs://payload"),
		ContentIDValidator:   []byte("ipfs://validator"),
		WarningTimeout:       1,
		TotalTimeout:         2,
		Deposit:              coin.NewCoinp(1, 0, "SOL"),
		EncryptedSecret:      []byte("encrypted seed phrase"),
		UnwrappedKeyMaterial: digest(9),
	}
}

// create opens the default escrow at genesis time.
func (f *fixture) create(mutate func(*CreateMsg)) {
	f.t.Helper()
	msg := f.createMsg()
	if mutate != nil {
		mutate(msg)
	}
	_, err := f.deliver(genesisTime, msg, f.testator)
	assert.Nil(f.t, err)
}

func (f *fixture) record() *Record {
	f.t.Helper()
	var r Record
	err := NewBucket().One(f.db, RecordKey(f.testator.Address(), f.beneficiary.Address()), &r)
	assert.Nil(f.t, err)
	return &r
}

func (f *fixture) balance(addr weave.Address) coin.Coins {
	f.t.Helper()
	cs, err := f.bank.Balance(f.db, addr)
	if err != nil {
		return nil
	}
	return cs
}

func (f *fixture) executeMsg(transfer bool) *ExecuteMsg {
	return &ExecuteMsg{
		Metadata:      meta,
		Testator:      f.testator.Address(),
		Beneficiary:   f.beneficiary.Address(),
		Verifier:      f.verifier.Address(),
		TransferFunds: transfer,
	}
}

func digest(b byte) []byte {
	d := make([]byte, 32)
	for i := range d {
		d[i] = b
	}
	return d
}

func after(d time.Duration) time.Time {
	return genesisTime.Add(d)
}
