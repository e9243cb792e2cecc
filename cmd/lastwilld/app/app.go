/*
Package app links together all the various components
to construct the lastwilld app.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/app"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/gconf"
	"github.com/lastwill-labs/weave/store/iavl"
	"github.com/lastwill-labs/weave/x"
	"github.com/lastwill-labs/weave/x/cash"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/lastwill-labs/weave/x/sigs"
	"github.com/lastwill-labs/weave/x/utils"
)

// Authenticator returns the typical authentication,
// just using public key signatures.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce even if the message
		// fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching to cash, the liveness registry and
// the escrow handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	bank := cash.NewController()
	cash.RegisterRoutes(r, authFn, bank)
	liveness.RegisterRoutes(r, authFn)
	escrow.RegisterRoutes(r, authFn, bank, liveness.NewRegistry())
	return r
}

// QueryRouter returns a default query router, allowing access to
// "/wallets", "/auth", "/_c", "/liveness/root", "/liveness/attestations"
// and "/escrows".
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		gconf.RegisterQuery,
		liveness.RegisterQuery,
		escrow.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis loaders of every extension.
func Initializers() weave.Initializer {
	return weave.ChainInitializers(
		cash.Initializer{},
		liveness.Initializer{},
		escrow.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() weave.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h weave.Handler, tx weave.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, errors.Wrap(err, "cannot create database instance")
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), context.Background()).
		WithInit(Initializers())
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (weave.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	kv, err := iavl.NewCommitStore(dir, name)
	if err != nil {
		return nil, err
	}
	return kv, nil
}
