/*
lastwillcli is the operator client of a lastwill node.

Commands are small and composable. Transactions are created, signed and
submitted by separate commands that communicate over stdin and stdout, so
they can be combined using a unix pipe:

	$ lastwillcli refresh -beneficiary 0C4A... \
		| lastwillcli sign \
		| lastwillcli submit
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/client"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(newCLI()).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the state shared by all commands.
type cli struct {
	configPath string
	defaults   *Config
	cfg        *Config
	// dial opens a node connection. Tests replace it.
	dial func(remote string) client.Conn
}

func newCLI() *cli {
	home := filepath.Join(os.ExpandEnv("$HOME"), ".lastwill")
	return &cli{
		configPath: filepath.Join(home, "cli.toml"),
		defaults:   DefaultConfig(home),
		dial:       client.NewHTTPConnection,
	}
}

func (c *cli) loadConfig(*cobra.Command, []string) error {
	cfg, err := LoadConfig(c.configPath, c.defaults)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *cli) client() *client.Client {
	return client.NewClient(c.dial(c.cfg.Node))
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:               "lastwillcli",
		Short:             "Command line client of the lastwill inheritance escrow",
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "path to the TOML configuration file")

	root.AddCommand(
		configCmd(c),
		versionCmd(),
		keygenCmd(c),
		keyaddrCmd(c),
		addressCmd(c),
		leafCmd(),
		createCmd(),
		refreshCmd(),
		executeCmd(),
		cancelCmd(),
		setRootCmd(),
		attestCmd(),
		signCmd(c),
		submitCmd(c),
		viewCmd(),
		stateCmd(c),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), weave.Version)
			return err
		},
	}
}

func configCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := InitConfig(c.configPath, c.cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", c.configPath)
			return err
		},
	}, &cobra.Command{
		Use:   "show",
		Short: "Print the configuration in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WriteConfig(cmd.OutOrStdout(), c.cfg)
		},
	})
	return cmd
}
