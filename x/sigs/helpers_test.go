package sigs

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/weavetest"
)

// testTx signs the serialized mock message it carries.
type testTx struct {
	weave.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*testTx)(nil)

func newTestTx(payload []byte) *testTx {
	return &testTx{Tx: &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/execute", Serialized: payload}}}
}

func (tx testTx) GetSignatures() []*StdSignature { return tx.Signatures }

func (tx testTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// signersRecorder remembers the signers seen by the last call.
type signersRecorder struct {
	Signers []weave.Condition
}

var _ weave.Handler = (*signersRecorder)(nil)

func (r *signersRecorder) Check(ctx weave.Context, _ weave.KVStore, _ weave.Tx) (*weave.CheckResult, error) {
	r.Signers = Authenticate{}.GetConditions(ctx)
	return &weave.CheckResult{}, nil
}

func (r *signersRecorder) Deliver(ctx weave.Context, _ weave.KVStore, _ weave.Tx) (*weave.DeliverResult, error) {
	r.Signers = Authenticate{}.GetConditions(ctx)
	return &weave.DeliverResult{}, nil
}
