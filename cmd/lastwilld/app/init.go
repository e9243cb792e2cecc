package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/commands/server"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/x/cash"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/liveness"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// AppName is used to identify the application and its database.
	AppName = "lastwill"

	defaultTicker = "LWT"
)

// GenesisState is the app_state section written by GenInitOptions.
type GenesisState struct {
	Cash []cash.GenesisAccount `json:"cash"`
	Conf struct {
		Escrow   *escrow.Configuration   `json:"escrow"`
		Liveness *liveness.Configuration `json:"liveness"`
	} `json:"conf"`
	Liveness liveness.Genesis `json:"liveness"`
}

// GenInitOptions will produce some basic options for one rich account, to
// use for dev mode. The same account owns both configurations and may
// publish registry roots.
//
// You can set
//
//	lastwilld init <ticker> <address>
//
// to define the default currency and the address that receives the coins.
// When no address is given, a new key is generated and its seed printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := defaultTicker
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
		}
	}

	var addr weave.Address
	if len(args) > 1 {
		var err error
		addr, err = weave.ParseAddress(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "address")
		}
	} else {
		generated, priv := server.GenerateCoinKey()
		addr = generated
		fmt.Printf("Generated key for %s, seed %s\n", addr, hex.EncodeToString(priv.Ed25519[:32]))
	}

	return json.Marshal(DevGenesis(addr, ticker))
}

// DevGenesis returns a genesis state where addr holds the initial supply
// and administers both extensions.
func DevGenesis(addr weave.Address, ticker string) GenesisState {
	var gen GenesisState
	gen.Cash = []cash.GenesisAccount{{
		Address: addr,
		Coins:   []*coin.Coin{coin.NewCoinp(123456789, 0, ticker)},
	}}
	gen.Conf.Escrow = &escrow.Configuration{
		Metadata:      &weave.Metadata{Schema: 1},
		Owner:         addr,
		RecordBond:    coin.NewCoinp(0, 100000000, ticker),
		MaxSecretSize: escrow.MaxSecretSize,
	}
	gen.Conf.Liveness = &liveness.Configuration{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    addr,
		Admin:    addr,
	}
	return gen
}

// GenerateApp is used to create a stub for server/start.go command.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" stays "" to use memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "abci.db")
	}

	stack := Stack()
	application, err := Application(AppName, stack, TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}
