package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/lastwill-labs/weave/x/sigs"
	"github.com/spf13/cobra"
)

func signCmd(c *cli) *cobra.Command {
	var (
		keyPath string
		seq     int64
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a transaction read from stdin",
		Long: `Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The sequence of the signer is fetched from the node unless given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				keyPath = c.cfg.KeyPath
			}
			key, err := readPrivateKey(keyPath)
			if err != nil {
				return err
			}
			tx, err := readTx(cmd.InOrStdin())
			if err != nil {
				return err
			}

			chainID := c.cfg.ChainID
			if chainID == "" {
				status, err := c.client().Status()
				if err != nil {
					return fmt.Errorf("cannot fetch chain id: %s", err)
				}
				chainID = status.ChainID
			}
			if seq < 0 {
				seq, err = c.client().NextSequence(key.PublicKey().Address())
				if err != nil {
					return fmt.Errorf("cannot get the next sequence number: %s", err)
				}
			}

			sig, err := sigs.SignTx(key, tx, chainID, seq)
			if err != nil {
				return fmt.Errorf("cannot sign transaction: %s", err)
			}
			tx.Signatures = append(tx.Signatures, sig)
			return writeSignedTx(cmd.OutOrStdout(), tx)
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "private key file, defaults to key_path of the configuration")
	cmd.Flags().Int64Var(&seq, "sequence", -1, "signer sequence, fetched from the node when negative")
	return cmd
}

func submitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit a signed transaction read from stdin",
		Long: `Submit a signed transaction and wait until it is included in a block.

The result data of an escrow execution is the disclosed secret. It is printed
as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := readTx(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := c.client().BroadcastTx(tx)
			if err != nil {
				return fmt.Errorf("cannot submit transaction: %+v", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "height: %d\nhash: %X\n", res.Height, res.Hash)
			if tx.ExecuteEscrowMsg == nil {
				if len(res.Data) != 0 {
					fmt.Fprintf(out, "data: %X\n", res.Data)
				}
				return nil
			}
			var disclosure escrow.Disclosure
			if err := disclosure.Unmarshal(res.Data); err != nil {
				return fmt.Errorf("cannot decode disclosure: %s", err)
			}
			return printJSON(cmd, disclosure)
		},
	}
}

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print a transaction read from stdin as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := readTx(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return printJSON(cmd, tx)
		},
	}
}

func stateCmd(c *cli) *cobra.Command {
	var (
		testatorFl, beneficiaryFl string
		at                        int64
	)
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print an escrow together with its display state",
		Long: `Print the escrow between given testator and beneficiary. The display state
is computed for the given unix time, or the local clock when not set. The
encrypted secret is never returned by the node.`,
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
			record, err := c.client().Escrow(testator, beneficiary)
			if err != nil {
				return fmt.Errorf("cannot load escrow: %+v", err)
			}
			now := weave.UnixTime(at)
			if at == 0 {
				now = weave.AsUnixTime(time.Now())
			}
			return printJSON(cmd, struct {
				State  escrow.State   `json:"state"`
				Record *escrow.Record `json:"record"`
			}{
				State:  escrow.DisplayState(record, now),
				Record: record,
			})
		},
	}
	cmd.Flags().StringVar(&testatorFl, "testator", "", "testator address")
	cmd.Flags().StringVar(&beneficiaryFl, "beneficiary", "", "beneficiary address")
	cmd.Flags().Int64Var(&at, "at", 0, "unix time to compute the state for")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize to JSON: %s", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", raw)
	return err
}
