package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
)

// Genesis is the subset of the tendermint genesis file read by the
// application.
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState weave.Options `json:"app_state"`
}

// LoadGenesis reads a tendermint genesis file.
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse genesis: %s", err)
	}
	return &gen, nil
}

// InitChainFromGenesis initializes the application state from a genesis
// file, the same way InitChain does with the content sent by tendermint.
func (s *StoreApp) InitChainFromGenesis(filePath string) error {
	gen, err := LoadGenesis(filePath)
	if err != nil {
		return err
	}
	appState, err := json.Marshal(gen.AppState)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return s.parseAppState(appState, gen.ChainID, s.initializer)
}
