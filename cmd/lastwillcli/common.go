package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/cmd/lastwilld/app"
	"github.com/lastwill-labs/weave/crypto"
	"golang.org/x/crypto/ed25519"
)

// readTx decodes a single transaction from input.
func readTx(input io.Reader) (*app.Tx, error) {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read transaction: %s", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no input data")
	}
	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("cannot deserialize transaction: %s", err)
	}
	return &tx, nil
}

// writeTx wraps msg into a new transaction and writes it to output.
func writeTx(output io.Writer, msg weave.Msg) error {
	tx, err := app.NewTx(msg)
	if err != nil {
		return err
	}
	return writeSignedTx(output, tx)
}

func writeSignedTx(output io.Writer, tx *app.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}
	_, err = output.Write(raw)
	return err
}

func readPrivateKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return &crypto.PrivateKey{Ed25519: raw}, nil
}

// parseAddress returns nil for an empty value, so that optional addresses
// can be left out.
func parseAddress(name, value string) (weave.Address, error) {
	if value == "" {
		return nil, nil
	}
	addr, err := weave.ParseAddress(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s address: %s", name, err)
	}
	return addr, nil
}

func requireAddress(name, value string) (weave.Address, error) {
	if value == "" {
		return nil, fmt.Errorf("%s address is required", name)
	}
	return parseAddress(name, value)
}

// parseHex decodes a hex value, optionally prefixed with 0x. An empty value
// decodes to nil.
func parseHex(name, value string) ([]byte, error) {
	value = strings.TrimPrefix(value, "0x")
	if value == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", name, err)
	}
	return b, nil
}
