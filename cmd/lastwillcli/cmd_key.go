package main

import (
	"fmt"
	"os"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/crypto"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/spf13/cobra"
)

func keygenCmd(c *cli) *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new private key",
		Long: `Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				keyPath = c.cfg.KeyPath
			}
			if _, err := os.Stat(keyPath); !os.IsNotExist(err) {
				// Never overwrite a key. The user must delete it first.
				return fmt.Errorf("private key file %q already exists, delete this file and try again", keyPath)
			}

			key := crypto.GenPrivKeyEd25519()
			fd, err := os.OpenFile(keyPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
			if err != nil {
				return fmt.Errorf("cannot create private key file: %s", err)
			}
			defer fd.Close()

			if _, err := fd.Write(key.Ed25519); err != nil {
				return fmt.Errorf("cannot write private key: %s", err)
			}
			if err := fd.Close(); err != nil {
				return fmt.Errorf("cannot close private key file: %s", err)
			}
			return printAddress(cmd, c.cfg.Bech32Prefix, key.PublicKey().Address())
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "private key file, defaults to key_path of the configuration")
	return cmd
}

func keyaddrCmd(c *cli) *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "keyaddr",
		Short: "Print the address of the private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				keyPath = c.cfg.KeyPath
			}
			key, err := readPrivateKey(keyPath)
			if err != nil {
				return err
			}
			return printAddress(cmd, c.cfg.Bech32Prefix, key.PublicKey().Address())
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "private key file, defaults to key_path of the configuration")
	return cmd
}

func addressCmd(c *cli) *cobra.Command {
	var testatorFl, beneficiaryFl string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the custody address of an escrow",
		Long: `Print the custody address of the escrow between given testator and
beneficiary. The address is derived from both parties only, so it can be
computed before the escrow exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			testator, err := requireAddress("testator", testatorFl)
			if err != nil {
				return err
			}
			beneficiary, err := requireAddress("beneficiary", beneficiaryFl)
			if err != nil {
				return err
			}
			return printAddress(cmd, c.cfg.Bech32Prefix, escrow.RecordAddress(testator, beneficiary))
		},
	}
	cmd.Flags().StringVar(&testatorFl, "testator", "", "testator address")
	cmd.Flags().StringVar(&beneficiaryFl, "beneficiary", "", "beneficiary address")
	return cmd
}

func printAddress(cmd *cobra.Command, prefix string, addr weave.Address) error {
	b32, err := addr.Bech32(prefix)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", addr, b32)
	return err
}

func leafCmd() *cobra.Command {
	var (
		testatorFl string
		at         int64
	)
	cmd := &cobra.Command{
		Use:   "leaf",
		Short: "Print the liveness leaf and commitment of a testator",
		Long: `Print the liveness leaf of a testator as of given unix time, followed by the
commitment that a registry tree stores for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			testator, err := requireAddress("testator", testatorFl)
			if err != nil {
				return err
			}
			leaf := liveness.Leaf(testator, weave.UnixTime(at))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%X\n%X\n", leaf[:], liveness.Commitment(leaf[:]))
			return err
		},
	}
	cmd.Flags().StringVar(&testatorFl, "testator", "", "testator address")
	cmd.Flags().Int64Var(&at, "at", 0, "last liveness time as unix seconds")
	return cmd
}
