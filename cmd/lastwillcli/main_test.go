package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/app"
	"github.com/lastwill-labs/weave/client"
	lastwilld "github.com/lastwill-labs/weave/cmd/lastwilld/app"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/weavetest"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/p2p"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// node is an in-memory client.Conn.
type node struct {
	models    map[string][]weave.Model
	delivered abci.ResponseDeliverTx
	sent      []tmtypes.Tx
}

func (n *node) Status() (*ctypes.ResultStatus, error) {
	return &ctypes.ResultStatus{NodeInfo: p2p.DefaultNodeInfo{Network: "node-chain"}}, nil
}

func (n *node) ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error) {
	models := n.models[path]
	keys, err := app.ResultsFromKeys(models).Marshal()
	if err != nil {
		return nil, err
	}
	values, err := app.ResultsFromValues(models).Marshal()
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultABCIQuery{Response: abci.ResponseQuery{Key: keys, Value: values}}, nil
}

func (n *node) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	n.sent = append(n.sent, tx)
	return &ctypes.ResultBroadcastTxCommit{DeliverTx: n.delivered, Height: 5}, nil
}

// newTestCLI returns a cli using a configuration file in a temporary
// directory. The directory is removed by the returned cleanup function.
func newTestCLI(t *testing.T, conn client.Conn) (*cli, string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "lastwillcli")
	require.NoError(t, err)
	c := &cli{
		configPath: filepath.Join(dir, "cli.toml"),
		defaults:   DefaultConfig(dir),
		dial:       func(string) client.Conn { return conn },
	}
	return c, dir, func() { os.RemoveAll(dir) }
}

func run(t *testing.T, c *cli, input []byte, args ...string) ([]byte, error) {
	t.Helper()
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetIn(bytes.NewReader(input))
	root.SetOut(&out)
	root.SetErr(ioutil.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.Bytes(), err
}

func mustRun(t *testing.T, c *cli, input []byte, args ...string) []byte {
	t.Helper()
	out, err := run(t, c, input, args...)
	require.NoError(t, err, "lastwillcli %s", strings.Join(args, " "))
	return out
}

func digestHex(b byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

func TestConfigInit(t *testing.T) {
	c, dir, cleanup := newTestCLI(t, &node{})
	defer cleanup()

	out := mustRun(t, c, nil, "config", "init")
	assert.Contains(t, string(out), c.configPath)

	_, err := run(t, c, nil, "config", "init")
	assert.Error(t, err, "existing configuration must not be overwritten")

	out = mustRun(t, c, nil, "config", "show")
	cfg, err := ReadConfig(bytes.NewReader(out), &Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(dir), cfg)
}

func TestReadConfigKeepsDefaults(t *testing.T) {
	defaults := DefaultConfig("/home/test")
	cfg, err := ReadConfig(strings.NewReader(`chain_id = "lastwill-1"`), defaults)
	require.NoError(t, err)
	assert.Equal(t, "lastwill-1", cfg.ChainID)
	assert.Equal(t, defaults.Node, cfg.Node)
	assert.Equal(t, defaults.KeyPath, cfg.KeyPath)
	assert.Equal(t, "", defaults.ChainID, "defaults must not be modified")

	_, err = ReadConfig(strings.NewReader(`chain_id = `), defaults)
	assert.Error(t, err)
}

func TestKeygenAndKeyaddr(t *testing.T) {
	c, dir, cleanup := newTestCLI(t, &node{})
	defer cleanup()

	keyPath := filepath.Join(dir, "test.key")
	generated := mustRun(t, c, nil, "keygen", "--key", keyPath)
	printed := mustRun(t, c, nil, "keyaddr", "--key", keyPath)
	assert.Equal(t, generated, printed)

	key, err := readPrivateKey(keyPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(printed)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, key.PublicKey().Address().String(), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "lw1"), lines[1])

	_, err = run(t, c, nil, "keygen", "--key", keyPath)
	assert.Error(t, err, "existing key must not be overwritten")
}

func TestAddress(t *testing.T) {
	c, _, cleanup := newTestCLI(t, &node{})
	defer cleanup()

	testator := weavetest.NewCondition().Address()
	beneficiary := weavetest.NewCondition().Address()
	out := mustRun(t, c, nil, "address", "--testator", testator.String(), "--beneficiary", beneficiary.String())
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, escrow.RecordAddress(testator, beneficiary).String(), lines[0])

	_, err := run(t, c, nil, "address", "--testator", testator.String())
	assert.Error(t, err)
}

func TestLeaf(t *testing.T) {
	c, _, cleanup := newTestCLI(t, &node{})
	defer cleanup()

	testator := weavetest.NewCondition().Address()
	out := mustRun(t, c, nil, "leaf", "--testator", testator.String(), "--at", "1700000000")
	leaf := liveness.Leaf(testator, 1700000000)
	want := fmt.Sprintf("%X\n%X\n", leaf[:], liveness.Commitment(leaf[:]))
	assert.Equal(t, want, string(out))
}

func TestCreateSignView(t *testing.T) {
	c, dir, cleanup := newTestCLI(t, &node{})
	defer cleanup()

	keyPath := filepath.Join(dir, "signer.key")
	mustRun(t, c, nil, "keygen", "--key", keyPath)
	key, err := readPrivateKey(keyPath)
	require.NoError(t, err)

	beneficiary := weavetest.NewCondition().Address()
	verifier := weavetest.NewCondition().Address()
	raw := mustRun(t, c, nil, "create",
		"--beneficiary", beneficiary.String(),
		"--verifier", verifier.String(),
		"--identity-hash", digestHex(1),
		"--email-hash", digestHex(2),
		"--document-hash", "0x"+digestHex(3),
		"--content-id", "ipfs://payload",
		"--content-id-validator", "ipfs://validator",
		"--secret", "cafe",
		"--key-material", digestHex(9),
		"--deposit", "10 LWT",
		"--warning", "30s",
		"--total", "1m",
	)

	// The chain id comes from the node when not configured.
	signed := mustRun(t, c, raw, "sign", "--key", keyPath, "--sequence", "3")

	var tx lastwilld.Tx
	require.NoError(t, tx.Unmarshal(signed))
	require.Len(t, tx.Signatures, 1)
	assert.Equal(t, int64(3), tx.Signatures[0].Sequence)
	assert.Equal(t, key.PublicKey(), tx.Signatures[0].Pubkey)

	msg, err := tx.GetMsg()
	require.NoError(t, err)
	create, ok := msg.(*escrow.CreateMsg)
	require.True(t, ok, "unexpected message %T", msg)
	assert.Equal(t, beneficiary, create.Beneficiary)
	assert.Equal(t, weave.UnixDuration(30), create.WarningTimeout)
	assert.Equal(t, weave.UnixDuration(60), create.TotalTimeout)
	assert.Equal(t, []byte{0xca, 0xfe}, create.EncryptedSecret)
	assert.True(t, coin.NewCoin(10, 0, "LWT").Equals(*create.Deposit))

	view := mustRun(t, c, signed, "view")
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(view, &decoded))
	assert.Contains(t, decoded, "create_escrow_msg")
	assert.NotContains(t, decoded, "execute_escrow_msg")
}

func TestBuildersRejectInvalidInput(t *testing.T) {
	c, _, cleanup := newTestCLI(t, &node{})
	defer cleanup()

	addr := weavetest.NewCondition().Address().String()
	cases := map[string][]string{
		"refresh without beneficiary": {"refresh"},
		"refresh with short root":     {"refresh", "--beneficiary", addr, "--root", "abcd"},
		"execute without verifier":    {"execute", "--testator", addr, "--beneficiary", addr},
		"cancel with bad address":     {"cancel", "--beneficiary", "zz"},
		"set-root with short root":    {"set-root", "--root", "ab"},
		"attest without proof data":   {"attest"},
		"create without deposit":      {"create", "--beneficiary", addr, "--verifier", addr},
	}
	for testName, args := range cases {
		t.Run(testName, func(t *testing.T) {
			out, err := run(t, c, nil, args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestSubmitExecute(t *testing.T) {
	disclosure := escrow.Disclosure{
		EncryptedSecret:      []byte("seed phrase"),
		UnwrappedKeyMaterial: bytes.Repeat([]byte{9}, 32),
	}
	data, err := disclosure.Marshal()
	require.NoError(t, err)
	conn := &node{delivered: abci.ResponseDeliverTx{Data: data}}

	c, _, cleanup := newTestCLI(t, conn)
	defer cleanup()

	addr := weavetest.NewCondition().Address().String()
	raw := mustRun(t, c, nil, "execute", "--testator", addr, "--beneficiary", addr, "--verifier", addr)
	out := mustRun(t, c, raw, "submit")

	require.Len(t, conn.sent, 1)
	assert.Equal(t, tmtypes.Tx(raw), conn.sent[0])
	assert.True(t, strings.HasPrefix(string(out), "height: 5\n"), string(out))

	var got escrow.Disclosure
	require.NoError(t, json.Unmarshal(out[bytes.IndexByte(out, '{'):], &got))
	assert.Equal(t, disclosure, got)
}

func TestSubmitRejected(t *testing.T) {
	conn := &node{delivered: abci.ResponseDeliverTx{
		Code: escrow.ErrAlreadyExecuted.ABCICode(),
		Log:  "already executed",
	}}
	c, _, cleanup := newTestCLI(t, conn)
	defer cleanup()

	addr := weavetest.NewCondition().Address().String()
	raw := mustRun(t, c, nil, "cancel", "--beneficiary", addr)
	_, err := run(t, c, raw, "submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already executed")

	_, err = run(t, c, nil, "submit")
	assert.Error(t, err, "empty input")
}

func TestState(t *testing.T) {
	testator := weavetest.NewCondition().Address()
	beneficiary := weavetest.NewCondition().Address()
	record := &escrow.Record{
		Metadata:       &weave.Metadata{Schema: 1},
		Testator:       testator,
		Beneficiary:    beneficiary,
		WarningTimeout: 30,
		TotalTimeout:   60,
		LastLivenessAt: 1000,
	}
	raw, err := record.Marshal()
	require.NoError(t, err)
	conn := &node{models: map[string][]weave.Model{
		"/escrows": {{Key: escrow.RecordKey(testator, beneficiary), Value: raw}},
	}}
	c, _, cleanup := newTestCLI(t, conn)
	defer cleanup()

	cases := map[string]escrow.State{
		"1010": escrow.StateActive,
		"1045": escrow.StateWarning,
		"1061": escrow.StateClaimable,
	}
	for at, want := range cases {
		out := mustRun(t, c, nil, "state",
			"--testator", testator.String(),
			"--beneficiary", beneficiary.String(),
			"--at", at)
		var got struct {
			State  escrow.State   `json:"state"`
			Record *escrow.Record `json:"record"`
		}
		require.NoError(t, json.Unmarshal(out, &got))
		assert.Equal(t, want, got.State, "at %s", at)
		assert.Equal(t, testator, got.Record.Testator)
	}

	empty := &node{models: map[string][]weave.Model{}}
	c2, _, cleanup2 := newTestCLI(t, empty)
	defer cleanup2()
	_, err = run(t, c2, nil, "state", "--testator", testator.String(), "--beneficiary", beneficiary.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), errors.ErrNotFound.Error())
}
