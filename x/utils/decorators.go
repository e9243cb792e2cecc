package utils

import (
	"time"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

// Recovery converts a panic of any handler down the stack into an
// ErrPanic error, so a single broken message cannot halt the node.
type Recovery struct{}

var _ weave.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (_ *weave.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (_ *weave.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}

// Logging writes one entry per processed message, with the message path
// and the processing time in microseconds. Failures are logged as errors,
// delivered messages as info and checked messages as debug.
type Logging struct{}

var _ weave.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	entry := logEntry(ctx, tx, start)
	switch {
	case err != nil:
		entry.Error("check failed", "err", err)
	default:
		entry.Debug("checked", "log", res.Log)
	}
	return res, err
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	entry := logEntry(ctx, tx, start)
	switch {
	case err != nil:
		entry.Error("deliver failed", "err", err)
	default:
		entry.Info("delivered", "log", res.Log)
	}
	return res, err
}

func logEntry(ctx weave.Context, tx weave.Tx, start time.Time) log.Logger {
	l := weave.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	if tx == nil {
		return l
	}
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		l = l.With("path", msg.Path())
	}
	return l
}

// ActionKey is the tag key under which ActionTagger publishes the message
// path of every delivered transaction.
const ActionKey = "action"

// ActionTagger tags successful deliveries with the message path. Clients
// subscribe to the tag to follow for example escrow executions.
type ActionTagger struct{}

var _ weave.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "action tag")
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	tag := common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())}
	res.Tags = append(res.Tags, tag)
	return res, nil
}
