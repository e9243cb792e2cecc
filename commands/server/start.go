package server

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lastwill-labs/weave/errors"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind  = "bind"
	flagDebug = "debug"

	// DefaultBind is the address tendermint expects the ABCI application
	// on when running with the default configuration.
	DefaultBind = "tcp://localhost:26658"
)

type startArgs struct {
	bind  string
	debug bool
}

func parseStartArgs(args []string) (startArgs, error) {
	var res startArgs
	fl := flag.NewFlagSet("start", flag.ContinueOnError)
	fl.StringVar(&res.bind, flagBind, DefaultBind, "address server listens on")
	fl.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	if err := fl.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// AppGenerator lets us lazily initialize app, using home dir and logger
// potentially initialized with other flags.
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

// StartCmd initializes the application and serves it over the ABCI socket
// protocol until the process receives an interrupt.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseStartArgs(args)
	if err != nil {
		return err
	}

	app, err := gen(home, logger, flags.debug)
	if err != nil {
		return errors.Wrap(err, "cannot create application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case s := <-sig:
			logger.Info("Shutting down", "signal", s.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return Serve(ctx, app, flags.bind, logger)
}

// Serve runs the ABCI socket server for the given application until the
// context is cancelled.
func Serve(ctx context.Context, app abci.Application, bind string, logger log.Logger) error {
	logger.Info("Starting ABCI app", "bind", bind)

	svr, err := server.NewServer(bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot start server: %s", err)
	}

	<-ctx.Done()
	if err := svr.Stop(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot stop server: %s", err)
	}
	return nil
}
