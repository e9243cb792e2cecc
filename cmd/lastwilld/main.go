// Command lastwilld runs the inheritance escrow node as an ABCI application
// for tendermint.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lastwill-labs/weave"
	lastwilld "github.com/lastwill-labs/weave/cmd/lastwilld/app"
	"github.com/lastwill-labs/weave/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

type command struct {
	name string
	help string
	run  func(logger log.Logger, home string, args []string, out io.Writer) error
}

var commands = []command{
	{
		name: "init",
		help: "Initialize app options in genesis file",
		run: func(logger log.Logger, home string, args []string, _ io.Writer) error {
			return server.InitCmd(lastwilld.GenInitOptions, logger, home, args)
		},
	},
	{
		name: "start",
		help: "Run the abci server",
		run: func(logger log.Logger, home string, args []string, _ io.Writer) error {
			return server.StartCmd(lastwilld.GenerateApp, logger, home, args)
		},
	},
	{
		name: "validate",
		help: "Check that genesis files can be loaded",
		run: func(_ log.Logger, _ string, args []string, _ io.Writer) error {
			return server.ValidateGenesis(lastwilld.Initializers(), args)
		},
	},
	{
		name: "version",
		help: "Print the app version",
		run: func(_ log.Logger, _ string, _ []string, out io.Writer) error {
			_, err := fmt.Fprintln(out, weave.Version)
			return err
		},
	},
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "lastwill")
	if err := run(logger, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, args []string, out io.Writer) error {
	fl := flag.NewFlagSet("lastwilld", flag.ContinueOnError)
	fl.SetOutput(out)
	home := fl.String("home", filepath.Join(os.ExpandEnv("$HOME"), ".lastwill"), "directory to store files under")
	fl.Usage = func() { usage(fl, out) }
	if err := fl.Parse(args); err != nil {
		return err
	}

	if fl.NArg() == 0 {
		usage(fl, out)
		return fmt.Errorf("missing command")
	}
	name := fl.Arg(0)
	if name == "help" {
		usage(fl, out)
		return nil
	}
	for _, c := range commands {
		if c.name == name {
			return c.run(logger, *home, fl.Args()[1:], out)
		}
	}
	usage(fl, out)
	return fmt.Errorf("unknown command: %s", name)
}

func usage(fl *flag.FlagSet, out io.Writer) {
	fmt.Fprintf(out, "lastwilld - liveness gated inheritance escrow node\n\nCommands:\n")
	fmt.Fprintf(out, "  %-9s %s\n", "help", "Print this message")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-9s %s\n", c.name, c.help)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	fl.PrintDefaults()
}
