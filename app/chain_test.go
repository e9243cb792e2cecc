package app

import (
	"context"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/weavetest"
	"github.com/lastwill-labs/weave/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicAt is a decorator that panics at the given height.
type panicAt int64

func (p panicAt) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	if h, _ := weave.GetHeight(ctx); h >= int64(p) {
		panic("boom")
	}
	return next.Check(ctx, db, tx)
}

func (p panicAt) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	if h, _ := weave.GetHeight(ctx); h >= int64(p) {
		panic("boom")
	}
	return next.Deliver(ctx, db, tx)
}

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	h := &weavetest.Handler{}
	var missing *weavetest.Decorator

	stack := ChainDecorators(
		c1,
		utils.NewRecovery(),
		missing,
		panicAt(6),
		c2,
	).WithHandler(h)

	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/chain"}}
	ctx := weave.WithHeight(context.Background(), 4)

	_, err := stack.Check(ctx, nil, tx)
	require.NoError(t, err)
	_, err = stack.Deliver(ctx, nil, tx)
	require.NoError(t, err)
	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())

	ctx = weave.WithHeight(context.Background(), 8)
	_, err = stack.Check(ctx, nil, tx)
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = stack.Deliver(ctx, nil, tx)
	assert.True(t, errors.ErrPanic.Is(err))

	// The panic stops the chain before reaching c2.
	assert.Equal(t, 4, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainAppend(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{DeliverErr: errors.ErrUnauthorized}
	h := &weavetest.Handler{}

	base := ChainDecorators(c1)
	stack := base.Chain(c2).WithHandler(h)
	assert.Len(t, base.chain, 1)

	_, err := stack.Deliver(context.Background(), nil, &weavetest.Tx{})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 1, c1.DeliverCallCount())
	assert.Equal(t, 0, h.DeliverCallCount())
}
