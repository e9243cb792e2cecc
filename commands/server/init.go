package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"path/filepath"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/crypto"
	"github.com/lastwill-labs/weave/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	flagForce   = "force"
)

// GenOptions can parse command-line and flag to generate default app_state
// for the genesis file. This is application-specific.
type GenOptions func(args []string) (json.RawMessage, error)

// GenerateCoinKey returns the address of a freshly generated key together
// with its hex encoded seed. The seed is all that is needed to recover the
// key later.
func GenerateCoinKey() (weave.Address, *crypto.PrivateKey) {
	key := crypto.GenPrivKeyEd25519()
	return key.PublicKey().Address(), key
}

// GenesisFile returns the genesis path tendermint uses for the given home.
func GenesisFile(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// InitCmd will add the application state to the genesis file created by
// `tendermint init`. The genesis file must exist. An already present
// app_state is only replaced when -force is passed.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	var force bool
	fl := flag.NewFlagSet("init", flag.ContinueOnError)
	fl.BoolVar(&force, flagForce, false, "overwrite an existing app_state")
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	// no app_state, leave like tendermint
	if gen == nil {
		return nil
	}
	appState, err := gen(fl.Args())
	if err != nil {
		return errors.Wrap(err, "cannot generate app state")
	}

	genFile := GenesisFile(home)
	if err := addGenesisOptions(genFile, appState, force); err != nil {
		return err
	}
	logger.Info("App state written to genesis", "path", genFile)
	return nil
}

// genesisDoc involves some tendermint-specific structures we don't want to
// parse, so we just grab it into a raw object format, so we can add one
// line.
type genesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage, force bool) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(errors.ErrNotFound, err.Error())
	}

	var doc genesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %s: %s", filename, err)
	}
	if len(doc[appStateKey]) > 0 && string(doc[appStateKey]) != "null" && !force {
		return errors.Wrap(errors.ErrDuplicate, "app_state already set, use -force to overwrite")
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}
