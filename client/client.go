/*
Package client provides access to a running lastwill node over the
tendermint RPC. It knows how to submit transactions and how to decode query
results into weave models.
*/
package client

import (
	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/app"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/lastwill-labs/weave/x/sigs"
	cmn "github.com/tendermint/tendermint/libs/common"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// Conn is the subset of the tendermint RPC used by the Client.
type Conn interface {
	Status() (*ctypes.ResultStatus, error)
	ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error)
	BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
}

var _ Conn = (*rpcclient.HTTP)(nil)

// NewHTTPConnection returns a connection to the node RPC listening on
// remote, eg. "http://localhost:26657".
func NewHTTPConnection(remote string) Conn {
	return rpcclient.NewHTTP(remote, "/websocket")
}

// Client wraps a tendermint connection to provide access to the weave
// data structures.
type Client struct {
	conn Conn
}

// NewClient wraps a Client around an existing connection.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Status is the (subjective) state of the node.
type Status struct {
	ChainID    string
	Height     int64
	CatchingUp bool
}

// Status returns current height and chain of the node.
func (c *Client) Status() (*Status, error) {
	status, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "status: %s", err)
	}
	return &Status{
		ChainID:    status.NodeInfo.Network,
		Height:     status.SyncInfo.LatestBlockHeight,
		CatchingUp: status.SyncInfo.CatchingUp,
	}, nil
}

// Query runs the query at the given path, eg. "/escrows" or
// "/wallets?prefix", and returns all matching models.
func (c *Client) Query(path string, data []byte) ([]weave.Model, error) {
	res, err := c.conn.ABCIQuery(path, data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "query %s: %s", path, err)
	}
	resp := res.Response
	if resp.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(resp.Code, resp.Log)
	}

	var keys, values app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := values.Unmarshal(resp.Value); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	return app.JoinResults(&keys, &values)
}

// QueryOne loads the single model stored under key into dest. ErrNotFound
// is returned when nothing matches.
func (c *Client) QueryOne(path string, key []byte, dest weave.Persistent) error {
	models, err := c.Query(path, key)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", path, key)
	}
	return dest.Unmarshal(models[0].Value)
}

// Result is the outcome of a transaction included in a block.
type Result struct {
	Hash   []byte
	Height int64
	Data   []byte
	Log    string
}

// BroadcastTx submits the transaction and waits until it is included in a
// block. Rejections are returned as errors matching the registered error
// of the returned code.
func (c *Client) BroadcastTx(tx weave.Tx) (*Result, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize transaction")
	}
	res, err := c.conn.BroadcastTxCommit(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "broadcast: %s", err)
	}
	if res.CheckTx.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.CheckTx.Code, res.CheckTx.Log)
	}
	if res.DeliverTx.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.DeliverTx.Code, res.DeliverTx.Log)
	}
	return &Result{
		Hash:   res.Hash,
		Height: res.Height,
		Data:   res.DeliverTx.Data,
		Log:    res.DeliverTx.Log,
	}, nil
}

// NextSequence returns the sequence the given signer must use for the next
// signature. Signers that never signed start at zero.
func (c *Client) NextSequence(signer weave.Address) (int64, error) {
	var user sigs.UserData
	switch err := c.QueryOne("/auth", signer, &user); {
	case err == nil:
		return user.Sequence, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Escrow returns the redacted record between the given parties.
func (c *Client) Escrow(testator, beneficiary weave.Address) (*escrow.Record, error) {
	var record escrow.Record
	if err := c.QueryOne("/escrows", escrow.RecordKey(testator, beneficiary), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// LivenessRoot returns the published registry root or nil.
func (c *Client) LivenessRoot() ([]byte, error) {
	models, err := c.Query("/liveness/root?prefix", nil)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	var root liveness.Root
	if err := root.Unmarshal(models[0].Value); err != nil {
		return nil, err
	}
	return root.Root, nil
}
