package escrow

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/gconf"
	"github.com/lastwill-labs/weave/orm"
	"github.com/lastwill-labs/weave/x"
	"github.com/lastwill-labs/weave/x/cash"
	"github.com/lastwill-labs/weave/x/liveness"
)

const (
	createCost  int64 = 300
	refreshCost int64 = 50
	executeCost int64 = 100
	cancelCost  int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, bank cash.Controller, roots liveness.RootSource) {
	bucket := NewBucket()
	r.Handle(CreateMsg{}.Path(), CreateHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(RefreshLivenessMsg{}.Path(), RefreshLivenessHandler{auth: auth, bucket: bucket, roots: roots})
	r.Handle(ExecuteMsg{}.Path(), ExecuteHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(CancelMsg{}.Path(), CancelHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(UpdateConfigurationMsg{}.Path(), gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth))
}

// CreateHandler opens new escrows.
type CreateHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.CoinMover
}

var _ weave.Handler = CreateHandler{}

// Check just verifies it is properly formed and returns the cost of
// executing it.
func (h CreateHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createCost}, nil
}

// Deliver stores the record and moves the deposit and the bond from the
// payer into custody. The custody address is returned.
func (h CreateHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	record, payer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	for _, amount := range []*coin.Coin{record.Deposit, record.Bond} {
		if coin.IsEmpty(amount) {
			continue
		}
		if err := h.bank.MoveCoins(db, payer, record.Address, *amount); err != nil {
			return nil, errors.Wrap(err, "cannot fund custody")
		}
	}
	key := RecordKey(record.Testator, record.Beneficiary)
	if err := h.bucket.Put(db, key, record); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	return &weave.DeliverResult{Data: record.Address}, nil
}

// validate does all common pre-processing between Check and Deliver. The
// record is returned ready to be stored, together with the funding
// address.
func (h CreateHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Record, weave.Address, error) {
	var msg CreateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if len(msg.EncryptedSecret) > int(conf.MaxSecretSize) {
		return nil, nil, errors.Field("EncryptedSecret", errors.ErrInput, "longer than %d", conf.MaxSecretSize)
	}

	testator := x.AnySigner(ctx, h.auth, msg.Testator)
	if testator == nil || !h.auth.HasAddress(ctx, testator) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "testator signature required")
	}
	payer := msg.Payer
	if payer == nil {
		payer = testator
	}
	if !h.auth.HasAddress(ctx, payer) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "payer signature required")
	}

	key := RecordKey(testator, msg.Beneficiary)
	switch err := h.bucket.Has(db, key); {
	case err == nil:
		return nil, nil, errors.Wrap(ErrAlreadyExists, "escrow for this beneficiary exists")
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	created := weave.AsUnixTime(now)
	record := &Record{
		Metadata:             &weave.Metadata{Schema: 1},
		Testator:             testator,
		Beneficiary:          msg.Beneficiary,
		Verifier:             msg.Verifier,
		IdentityHash:         msg.IdentityHash,
		EmailHash:            msg.EmailHash,
		DocumentIDHash:       msg.DocumentIDHash,
		ContentID:            msg.ContentID,
		ContentIDValidator:   msg.ContentIDValidator,
		WarningTimeout:       msg.WarningTimeout,
		TotalTimeout:         msg.TotalTimeout,
		Deposit:              msg.Deposit.Clone(),
		Bond:                 conf.RecordBond.Clone(),
		LastLivenessAt:       created,
		CreatedAt:            created,
		EncryptedSecret:      msg.EncryptedSecret,
		UnwrappedKeyMaterial: msg.UnwrappedKeyMaterial,
		DebugMode:            msg.DebugMode,
		Address:              RecordAddress(testator, msg.Beneficiary),
	}
	return record, payer, nil
}

// RefreshLivenessHandler accepts liveness proofs of the testator.
type RefreshLivenessHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	roots  liveness.RootSource
}

var _ weave.Handler = RefreshLivenessHandler{}

func (h RefreshLivenessHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: refreshCost}, nil
}

// Deliver advances the liveness time of the record. A missing root keeps
// the previously stored one.
func (h RefreshLivenessHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	key, record, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Put(db, key, record); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	return &weave.DeliverResult{}, nil
}

// validate returns the record updated with the accepted claim.
func (h RefreshLivenessHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) ([]byte, *Record, error) {
	var msg RefreshLivenessMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	testator := x.AnySigner(ctx, h.auth, msg.Testator)
	if testator == nil || !h.auth.HasAddress(ctx, testator) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "testator signature required")
	}

	key := RecordKey(testator, msg.Beneficiary)
	var record Record
	if err := h.bucket.One(db, key, &record); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load escrow")
	}
	if record.Executed {
		return nil, nil, ErrAlreadyExecuted
	}
	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	// Liveness follows the ledger clock and must strictly increase.
	now := weave.AsUnixTime(blockTime)
	if now <= record.LastLivenessAt {
		return nil, nil, errors.Wrapf(ErrTransitionNotAllowed, "already refreshed at %s", record.LastLivenessAt)
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	commitment, err := verifierFor(&record, conf, h.roots).Verify(db, &record, msg.claim())
	if err != nil {
		return nil, nil, err
	}

	record.LastLivenessAt = now
	if len(msg.Root) != 0 {
		record.LivenessRoot = msg.Root
	}
	switch {
	case len(msg.Commitment) != 0:
		record.LivenessCommitment = msg.Commitment
	case len(commitment) != 0:
		record.LivenessCommitment = commitment
	}
	return key, &record, nil
}

// ExecuteHandler releases escrows of testators that failed to refresh
// liveness in time.
type ExecuteHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.CoinMover
}

var _ weave.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: executeCost}, nil
}

// Deliver marks the record executed and, if requested, moves the deposit to
// the beneficiary. The secret and the key material are returned as an
// encoded Disclosure.
func (h ExecuteHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, key, record, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if msg.TransferFunds {
		if err := h.bank.MoveCoins(db, record.Address, record.Beneficiary, *record.Deposit); err != nil {
			return nil, errors.Wrap(err, "cannot release deposit")
		}
		record.Deposit = &coin.Coin{Ticker: record.Deposit.Ticker}
	}
	record.Executed = true
	if err := h.bucket.Put(db, key, record); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}

	disclosure := Disclosure{
		EncryptedSecret:      record.EncryptedSecret,
		UnwrappedKeyMaterial: record.UnwrappedKeyMaterial,
	}
	data, err := disclosure.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode disclosure")
	}
	weave.GetLogger(ctx).With("module", packageName).Info("escrow executed",
		"address", record.Address, "transfer", msg.TransferFunds)
	return &weave.DeliverResult{Data: data}, nil
}

// validate runs the guards in order: verifier identity, signatures,
// terminal state, timeout and assets.
func (h ExecuteHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ExecuteMsg, []byte, *Record, error) {
	var msg ExecuteMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key := RecordKey(msg.Testator, msg.Beneficiary)
	var record Record
	if err := h.bucket.One(db, key, &record); err != nil {
		return nil, nil, nil, errors.Wrap(err, "cannot load escrow")
	}

	if !msg.Verifier.Equals(record.Verifier) {
		return nil, nil, nil, errors.Wrapf(ErrInvalidVerifier, "expected %s", record.Verifier)
	}
	if !x.HasAllAddresses(ctx, h.auth, []weave.Address{record.Beneficiary, record.Verifier}) {
		return nil, nil, nil, errors.Wrap(ErrUnauthorized, "beneficiary and verifier signatures required")
	}
	if record.Executed {
		return nil, nil, nil, ErrAlreadyExecuted
	}

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "block time")
	}
	if weave.AsUnixTime(now).Sub(record.LastLivenessAt) <= record.TotalTimeout {
		return nil, nil, nil, errors.Wrapf(ErrTransitionNotAllowed, "liveness refreshed at %s", record.LastLivenessAt)
	}
	if msg.TransferFunds && coin.IsEmpty(record.Deposit) {
		return nil, nil, nil, ErrNoAssets
	}
	return &msg, key, &record, nil
}

// CancelHandler closes escrows on the testator's request.
type CancelHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ weave.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: cancelCost}, nil
}

// Deliver returns everything held in custody to the testator and deletes
// the record.
func (h CancelHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	key, record, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	available, err := h.bank.Balance(db, record.Address)
	switch {
	case err == nil:
	case errors.ErrEmpty.Is(err):
		available = nil
	default:
		return nil, err
	}
	for _, c := range available {
		if err := h.bank.MoveCoins(db, record.Address, record.Testator, *c); err != nil {
			return nil, errors.Wrap(err, "cannot return custody funds")
		}
	}
	if err := h.bucket.Delete(db, key); err != nil {
		return nil, errors.Wrap(err, "cannot delete escrow")
	}
	weave.GetLogger(ctx).With("module", packageName).Info("escrow cancelled", "address", record.Address)
	return &weave.DeliverResult{}, nil
}

func (h CancelHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) ([]byte, *Record, error) {
	var msg CancelMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	testator := x.AnySigner(ctx, h.auth, msg.Testator)
	if testator == nil || !h.auth.HasAddress(ctx, testator) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "testator signature required")
	}

	key := RecordKey(testator, msg.Beneficiary)
	var record Record
	if err := h.bucket.One(db, key, &record); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load escrow")
	}
	if record.Executed {
		return nil, nil, ErrAlreadyExecuted
	}
	return key, &record, nil
}
