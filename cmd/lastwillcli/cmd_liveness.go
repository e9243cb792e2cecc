package main

import (
	"fmt"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/x/liveness"
	"github.com/spf13/cobra"
)

func setRootCmd() *cobra.Command {
	var rootFl string
	cmd := &cobra.Command{
		Use:   "set-root",
		Short: "Create a transaction publishing a registry root",
		Long: `Create a transaction publishing a new liveness registry root. Only the
registry admin can sign it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := parseHex("root", rootFl)
			if err != nil {
				return err
			}
			msg := &liveness.SetRootMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Root:     root,
			}
			if err := msg.Validate(); err != nil {
				return fmt.Errorf("invalid message: %s", err)
			}
			return writeTx(cmd.OutOrStdout(), msg)
		},
	}
	cmd.Flags().StringVar(&rootFl, "root", "", "hex encoded 32 byte root")
	return cmd
}

func attestCmd() *cobra.Command {
	var (
		testatorFl, payerFl string
		proofFl, routingFl  string
		outputIndex         uint32
	)
	cmd := &cobra.Command{
		Use:   "attest",
		Short: "Create a transaction storing a compressed liveness attestation",
		Long: `Create a transaction storing an advisory compressed liveness attestation.
Attestations never change the state of an escrow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &liveness.CreateCompressedLivenessMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				OutputIndex: outputIndex,
			}
			var err error
			if msg.Testator, err = parseAddress("testator", testatorFl); err != nil {
				return err
			}
			if msg.Payer, err = parseAddress("payer", payerFl); err != nil {
				return err
			}
			if msg.ProofData, err = parseHex("proof data", proofFl); err != nil {
				return err
			}
			if msg.TreeRouting, err = parseHex("tree routing", routingFl); err != nil {
				return err
			}
			if err := msg.Validate(); err != nil {
				return fmt.Errorf("invalid message: %s", err)
			}
			return writeTx(cmd.OutOrStdout(), msg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&testatorFl, "testator", "", "testator address, defaults to the main signer")
	fl.StringVar(&payerFl, "payer", "", "paying address, defaults to the main signer")
	fl.StringVar(&proofFl, "proof-data", "", "hex encoded proof data")
	fl.StringVar(&routingFl, "tree-routing", "", "hex encoded tree routing information")
	fl.Uint32Var(&outputIndex, "output-index", 0, "output index of the attestation")
	return cmd
}
