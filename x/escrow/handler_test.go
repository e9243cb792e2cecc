package escrow

import (
	"testing"
	"time"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/weavetest"
	"github.com/lastwill-labs/weave/weavetest/assert"
	"github.com/lastwill-labs/weave/x/liveness"
)

func TestCreate(t *testing.T) {
	payer := weavetest.NewCondition()

	cases := map[string]struct {
		conf        *Configuration
		noConf      bool
		mutate      func(f *fixture, msg *CreateMsg)
		signers     func(f *fixture) []weave.Condition
		wantErr     *errors.Error
		wantCustody coin.Coins
	}{
		"testator funds the deposit": {
			wantCustody: coin.Coins{coin.NewCoinp(1, 0, "SOL")},
		},
		"separate payer funds deposit and bond": {
			conf: &Configuration{
				Metadata:      meta,
				Owner:         weavetest.NewCondition().Address(),
				RecordBond:    coin.NewCoinp(0, 2000000, "SOL"),
				MaxSecretSize: 64,
			},
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.Testator = f.testator.Address()
				msg.Payer = payer.Address()
			},
			signers: func(f *fixture) []weave.Condition {
				return []weave.Condition{payer, f.testator}
			},
			wantCustody: coin.Coins{coin.NewCoinp(1, 2000000, "SOL")},
		},
		"verifier cannot be the beneficiary": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.Verifier = f.beneficiary.Address()
			},
			wantErr: errors.ErrInput,
		},
		"payer must sign": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.Payer = payer.Address()
			},
			wantErr: errors.ErrUnauthorized,
		},
		"testator must sign": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.Testator = f.testator.Address()
			},
			signers: func(f *fixture) []weave.Condition {
				return []weave.Condition{f.beneficiary}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"zero deposit": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.Deposit = nil
			},
		},
		"deposit above balance": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.Deposit = coin.NewCoinp(11, 0, "SOL")
			},
			wantErr: errors.ErrAmount,
		},
		"warning timeout after total timeout": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.WarningTimeout = 3
			},
			wantErr: errors.ErrInput,
		},
		"zero total timeout": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.WarningTimeout = 0
				msg.TotalTimeout = 0
			},
			wantErr: errors.ErrInput,
		},
		"secret above configured limit": {
			conf: &Configuration{
				Metadata:      meta,
				Owner:         weavetest.NewCondition().Address(),
				MaxSecretSize: 4,
			},
			wantErr: errors.ErrInput,
		},
		"short identity hash": {
			mutate: func(f *fixture, msg *CreateMsg) {
				msg.IdentityHash = []byte("short")
			},
			wantErr: errors.ErrInput,
		},
		"configuration is required": {
			noConf:  true,
			wantErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, tc.conf, nil)
			if tc.noConf {
				assert.Nil(t, f.db.Delete([]byte("_c:escrow")))
			}
			assert.Nil(t, f.bank.IssueCoins(f.db, payer.Address(), coin.NewCoin(5, 0, "SOL")))

			msg := f.createMsg()
			if tc.mutate != nil {
				tc.mutate(f, msg)
			}
			signers := []weave.Condition{f.testator}
			if tc.signers != nil {
				signers = tc.signers(f)
			}

			res, err := f.deliver(genesisTime, msg, signers...)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			addr := RecordAddress(f.testator.Address(), f.beneficiary.Address())
			if tc.wantErr != nil {
				assert.Nil(t, f.balance(addr))
				return
			}

			assert.Equal(t, []byte(addr), res.Data)
			assert.Equal(t, true, tc.wantCustody.Equals(f.balance(addr)))

			r := f.record()
			assert.Equal(t, weave.AsUnixTime(genesisTime), r.CreatedAt)
			assert.Equal(t, r.CreatedAt, r.LastLivenessAt)
			assert.Equal(t, false, r.Executed)
			assert.Equal(t, addr, r.Address)
			assert.Equal(t, f.verifier.Address(), r.Verifier)
		})
	}
}

func TestCreateTwice(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(nil)

	_, err := f.deliver(after(time.Second), f.createMsg(), f.testator)
	assert.IsErr(t, ErrAlreadyExists, err)

	// Another beneficiary is another record.
	msg := f.createMsg()
	msg.Beneficiary = weavetest.NewCondition().Address()
	msg.Deposit = nil
	_, err = f.deliver(after(time.Second), msg, f.testator)
	assert.Nil(t, err)
}

func TestRefreshLivenessDebugMode(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	msg := &RefreshLivenessMsg{
		Metadata:    meta,
		Beneficiary: f.beneficiary.Address(),
		Root:        digest(0xAB),
	}
	_, err := f.deliver(after(10*time.Second), msg, f.testator)
	assert.Nil(t, err)

	r := f.record()
	assert.Equal(t, weave.HexBytes(digest(0xAB)), r.LivenessRoot)
	assert.Equal(t, weave.AsUnixTime(after(10*time.Second)), r.LastLivenessAt)
	assert.Nil(t, r.LivenessCommitment)
}

func TestRefreshLivenessMixingDigest(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(nil)

	leaf := liveness.Leaf(f.testator.Address(), weave.AsUnixTime(genesisTime))
	bad := &RefreshLivenessMsg{
		Metadata:    meta,
		Beneficiary: f.beneficiary.Address(),
		Root:        digest(0xAB),
	}
	_, err := f.deliver(after(time.Second), bad, f.testator)
	assert.IsErr(t, ErrInvalidLivenessRoot, err)
	assert.Equal(t, weave.AsUnixTime(genesisTime), f.record().LastLivenessAt)

	good := &RefreshLivenessMsg{
		Metadata:    meta,
		Beneficiary: f.beneficiary.Address(),
		Root:        leaf[:],
	}
	_, err = f.deliver(after(time.Second), good, f.testator)
	assert.Nil(t, err)

	r := f.record()
	assert.Equal(t, weave.HexBytes(leaf[:]), r.LivenessRoot)
	assert.Equal(t, weave.HexBytes(liveness.Commitment(leaf[:])), r.LivenessCommitment)
	assert.Equal(t, weave.AsUnixTime(after(time.Second)), r.LastLivenessAt)

	// The leaf follows the liveness time, the previous one is stale.
	_, err = f.deliver(after(2*time.Second), good, f.testator)
	assert.IsErr(t, ErrInvalidLivenessRoot, err)
}

func TestRefreshLivenessMonotonic(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	msg := &RefreshLivenessMsg{Metadata: meta, Beneficiary: f.beneficiary.Address(), Root: digest(5)}

	// A refresh in the creation block would not advance the liveness time.
	_, err := f.deliver(genesisTime, msg, f.testator)
	assert.IsErr(t, ErrTransitionNotAllowed, err)
	assert.Equal(t, weave.AsUnixTime(genesisTime), f.record().LastLivenessAt)

	_, err = f.deliver(after(time.Second), msg, f.testator)
	assert.Nil(t, err)
	assert.Equal(t, weave.AsUnixTime(after(time.Second)), f.record().LastLivenessAt)

	// Repeated refreshes within one block never run ahead of the block time.
	for i := 0; i < 10; i++ {
		_, err = f.deliver(after(time.Second), msg, f.testator)
		assert.IsErr(t, ErrTransitionNotAllowed, err)
	}
	assert.Equal(t, weave.AsUnixTime(after(time.Second)), f.record().LastLivenessAt)

	// The total timeout still counts from the accepted refresh.
	_, err = f.deliver(after(4*time.Second), f.executeMsg(false), f.beneficiary, f.verifier)
	assert.Nil(t, err)
}

func TestRefreshLivenessWithoutRoot(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	withRoot := &RefreshLivenessMsg{Metadata: meta, Beneficiary: f.beneficiary.Address(), Root: digest(7)}
	_, err := f.deliver(after(time.Second), withRoot, f.testator)
	assert.Nil(t, err)

	noRoot := &RefreshLivenessMsg{Metadata: meta, Beneficiary: f.beneficiary.Address()}
	_, err = f.deliver(after(5*time.Second), noRoot, f.testator)
	assert.Nil(t, err)

	r := f.record()
	assert.Equal(t, weave.HexBytes(digest(7)), r.LivenessRoot)
	assert.Equal(t, weave.AsUnixTime(after(5*time.Second)), r.LastLivenessAt)
}

func TestRefreshLivenessStoresCommitment(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	msg := &RefreshLivenessMsg{
		Metadata:    meta,
		Beneficiary: f.beneficiary.Address(),
		Commitment:  digest(4),
	}
	_, err := f.deliver(after(time.Second), msg, f.testator)
	assert.Nil(t, err)
	assert.Equal(t, weave.HexBytes(digest(4)), f.record().LivenessCommitment)
}

func TestRefreshLivenessGuards(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	// Only the testator may refresh. Another signer addresses a record
	// that does not exist.
	msg := &RefreshLivenessMsg{
		Metadata:    meta,
		Testator:    f.testator.Address(),
		Beneficiary: f.beneficiary.Address(),
	}
	_, err := f.deliver(after(time.Second), msg, f.beneficiary)
	assert.IsErr(t, ErrUnauthorized, err)

	msg.Testator = nil
	_, err = f.deliver(after(time.Second), msg, f.beneficiary)
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = f.deliver(after(3*time.Second), f.executeMsg(false), f.beneficiary, f.verifier)
	assert.Nil(t, err)

	_, err = f.deliver(after(4*time.Second), msg, f.testator)
	assert.IsErr(t, ErrAlreadyExecuted, err)
}

func TestRefreshLivenessProduction(t *testing.T) {
	testator := weavetest.NewCondition()
	created := weave.AsUnixTime(genesisTime)
	leaf := liveness.Leaf(testator.Address(), created)
	root, proofs := liveness.BuildTree([][]byte{digest(1), leaf[:], digest(2)})

	conf := &Configuration{
		Metadata:      meta,
		Owner:         weavetest.NewCondition().Address(),
		Production:    true,
		MaxSecretSize: MaxSecretSize,
	}
	f := newFixture(t, conf, liveness.StaticRoot(root))
	f.testator = testator
	assert.Nil(t, f.bank.IssueCoins(f.db, testator.Address(), coin.NewCoin(2, 0, "SOL")))
	// Debug mode is ignored on production chains.
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	aunts := make([]weave.HexBytes, len(proofs[1].Aunts))
	for i, a := range proofs[1].Aunts {
		aunts[i] = a
	}

	bypass := &RefreshLivenessMsg{Metadata: meta, Beneficiary: f.beneficiary.Address(), Root: digest(9)}
	_, err := f.deliver(after(time.Second), bypass, f.testator)
	assert.IsErr(t, ErrInvalidLivenessRoot, err)

	wrongIndex := &RefreshLivenessMsg{
		Metadata:    meta,
		Beneficiary: f.beneficiary.Address(),
		Proof:       aunts,
		ProofIndex:  0,
		ProofTotal:  3,
	}
	_, err = f.deliver(after(time.Second), wrongIndex, f.testator)
	assert.IsErr(t, ErrInvalidLivenessRoot, err)

	good := &RefreshLivenessMsg{
		Metadata:    meta,
		Beneficiary: f.beneficiary.Address(),
		Root:        root,
		Proof:       aunts,
		ProofIndex:  1,
		ProofTotal:  3,
	}
	_, err = f.deliver(after(time.Second), good, f.testator)
	assert.Nil(t, err)

	r := f.record()
	assert.Equal(t, weave.HexBytes(root), r.LivenessRoot)
	assert.Equal(t, weave.HexBytes(proofs[1].LeafHash), r.LivenessCommitment)
}

func TestExecuteScenarios(t *testing.T) {
	cases := map[string]struct {
		mutate      func(*CreateMsg)
		at          time.Time
		msg         func(f *fixture) *ExecuteMsg
		signers     func(f *fixture) []weave.Condition
		wantErr     *errors.Error
		wantDeposit *coin.Coin
		wantPaid    coin.Coins
	}{
		"claim after timeout": {
			at:          after(4 * time.Second),
			msg:         func(f *fixture) *ExecuteMsg { return f.executeMsg(true) },
			wantDeposit: &coin.Coin{Ticker: "SOL"},
			wantPaid:    coin.Coins{coin.NewCoinp(1, 0, "SOL")},
		},
		"verifier does not match": {
			at: after(4 * time.Second),
			msg: func(f *fixture) *ExecuteMsg {
				m := f.executeMsg(true)
				m.Verifier = f.testator.Address()
				return m
			},
			signers: func(f *fixture) []weave.Condition {
				return []weave.Condition{f.beneficiary, f.testator}
			},
			wantErr: ErrInvalidVerifier,
		},
		"verifier must sign": {
			at:  after(4 * time.Second),
			msg: func(f *fixture) *ExecuteMsg { return f.executeMsg(true) },
			signers: func(f *fixture) []weave.Condition {
				return []weave.Condition{f.beneficiary}
			},
			wantErr: ErrUnauthorized,
		},
		"beneficiary must sign": {
			at:  after(4 * time.Second),
			msg: func(f *fixture) *ExecuteMsg { return f.executeMsg(true) },
			signers: func(f *fixture) []weave.Condition {
				return []weave.Condition{f.verifier, f.testator}
			},
			wantErr: ErrUnauthorized,
		},
		"testator is alive": {
			at:      after(2 * time.Second),
			msg:     func(f *fixture) *ExecuteMsg { return f.executeMsg(true) },
			wantErr: ErrTransitionNotAllowed,
		},
		"no assets to transfer": {
			mutate:  func(m *CreateMsg) { m.Deposit = nil },
			at:      after(4 * time.Second),
			msg:     func(f *fixture) *ExecuteMsg { return f.executeMsg(true) },
			wantErr: ErrNoAssets,
		},
		"execute without transfer": {
			mutate: func(m *CreateMsg) { m.Deposit = nil },
			at:     after(4 * time.Second),
			msg:    func(f *fixture) *ExecuteMsg { return f.executeMsg(false) },
		},
		"keep the deposit in custody": {
			at:          after(4 * time.Second),
			msg:         func(f *fixture) *ExecuteMsg { return f.executeMsg(false) },
			wantDeposit: coin.NewCoinp(1, 0, "SOL"),
		},
		"unknown escrow": {
			at: after(4 * time.Second),
			msg: func(f *fixture) *ExecuteMsg {
				m := f.executeMsg(true)
				m.Testator = f.verifier.Address()
				return m
			},
			wantErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			f.create(tc.mutate)

			signers := []weave.Condition{f.beneficiary, f.verifier}
			if tc.signers != nil {
				signers = tc.signers(f)
			}
			res, err := f.deliver(tc.at, tc.msg(f), signers...)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}

			r := f.record()
			if tc.wantErr != nil {
				assert.Equal(t, false, r.Executed)
				return
			}
			assert.Equal(t, true, r.Executed)
			assert.Equal(t, tc.wantDeposit, r.Deposit)
			assert.Equal(t, true, tc.wantPaid.Equals(f.balance(f.beneficiary.Address())))

			var d Disclosure
			assert.Nil(t, d.Unmarshal(res.Data))
			assert.Equal(t, []byte("encrypted seed phrase"), d.EncryptedSecret)
			assert.Equal(t, digest(9), d.UnwrappedKeyMaterial)
		})
	}
}

func TestExecuteExactlyOnce(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(nil)

	_, err := f.deliver(after(4*time.Second), f.executeMsg(true), f.beneficiary, f.verifier)
	assert.Nil(t, err)

	for _, transfer := range []bool{true, false} {
		_, err = f.deliver(after(5*time.Second), f.executeMsg(transfer), f.beneficiary, f.verifier)
		assert.IsErr(t, ErrAlreadyExecuted, err)
	}
	want := coin.Coins{coin.NewCoinp(1, 0, "SOL")}
	assert.Equal(t, true, want.Equals(f.balance(f.beneficiary.Address())))

	msg := &CancelMsg{Metadata: meta, Beneficiary: f.beneficiary.Address()}
	_, err = f.deliver(after(5*time.Second), msg, f.testator)
	assert.IsErr(t, ErrAlreadyExecuted, err)
}

func TestExecuteAfterRefresh(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.DebugMode = true })

	refresh := &RefreshLivenessMsg{Metadata: meta, Beneficiary: f.beneficiary.Address(), Root: digest(1)}
	_, err := f.deliver(after(3*time.Second), refresh, f.testator)
	assert.Nil(t, err)

	// Timeout counts from the last refresh.
	_, err = f.deliver(after(5*time.Second), f.executeMsg(true), f.beneficiary, f.verifier)
	assert.IsErr(t, ErrTransitionNotAllowed, err)

	_, err = f.deliver(after(6*time.Second), f.executeMsg(true), f.beneficiary, f.verifier)
	assert.Nil(t, err)
}

func TestCancel(t *testing.T) {
	conf := &Configuration{
		Metadata:      meta,
		Owner:         weavetest.NewCondition().Address(),
		RecordBond:    coin.NewCoinp(0, 5000, "SOL"),
		MaxSecretSize: MaxSecretSize,
	}
	f := newFixture(t, conf, nil)
	f.create(nil)
	addr := RecordAddress(f.testator.Address(), f.beneficiary.Address())
	assert.Equal(t, true, coin.Coins{coin.NewCoinp(1, 5000, "SOL")}.Equals(f.balance(addr)))

	msg := &CancelMsg{
		Metadata:    meta,
		Testator:    f.testator.Address(),
		Beneficiary: f.beneficiary.Address(),
	}
	_, err := f.deliver(after(time.Second), msg, f.beneficiary)
	assert.IsErr(t, ErrUnauthorized, err)

	_, err = f.deliver(after(time.Hour), msg, f.testator)
	assert.Nil(t, err)

	assert.Nil(t, f.balance(addr))
	assert.Equal(t, true, coin.Coins{coin.NewCoinp(10, 0, "SOL")}.Equals(f.balance(f.testator.Address())))
	err = NewBucket().Has(f.db, RecordKey(f.testator.Address(), f.beneficiary.Address()))
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = f.deliver(after(time.Hour), msg, f.testator)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = f.deliver(after(time.Hour), f.executeMsg(true), f.beneficiary, f.verifier)
	assert.IsErr(t, errors.ErrNotFound, err)

	// The pair can open a new escrow.
	_, err = f.deliver(after(2*time.Hour), f.createMsg(), f.testator)
	assert.Nil(t, err)
}

func TestCancelEmptyCustody(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.create(func(m *CreateMsg) { m.Deposit = nil })

	msg := &CancelMsg{Metadata: meta, Beneficiary: f.beneficiary.Address()}
	_, err := f.deliver(after(time.Second), msg, f.testator)
	assert.Nil(t, err)
}

func TestUpdateConfiguration(t *testing.T) {
	f := newFixture(t, nil, nil)

	msg := &UpdateConfigurationMsg{
		Metadata: meta,
		Patch:    &Configuration{Production: true, MaxSecretSize: 128},
	}
	_, err := f.deliver(genesisTime, msg, f.testator)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	_, err = f.deliver(genesisTime, msg, f.owner)
	assert.Nil(t, err)

	conf, err := loadConf(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, conf.Production)
	assert.Equal(t, int32(128), conf.MaxSecretSize)
	assert.Equal(t, f.owner.Address(), conf.Owner)
}

func TestLifecycleOnCommitStore(t *testing.T) {
	db := weavetest.CommitKVStore(t)

	f := newFixtureOn(t, db.Adapter(), nil, nil)
	f.create(nil)
	_, err := db.Commit()
	assert.Nil(t, err)

	key := RecordKey(f.testator.Address(), f.beneficiary.Address())
	var committed Record
	assert.Nil(t, NewBucket().One(db.Adapter(), key, &committed))
	assert.Equal(t, false, committed.Executed)
	assert.Equal(t, false, committed.Deposit.IsZero())

	_, err = f.deliver(after(3*time.Second), f.executeMsg(true), f.beneficiary, f.verifier)
	assert.Nil(t, err)
	_, err = db.Commit()
	assert.Nil(t, err)

	var executed Record
	assert.Nil(t, NewBucket().One(db.Adapter(), key, &executed))
	assert.Equal(t, true, executed.Executed)
	assert.Equal(t, true, executed.Deposit.IsZero())
}
