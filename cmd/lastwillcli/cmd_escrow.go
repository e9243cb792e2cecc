package main

import (
	"fmt"
	"time"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/coin"
	"github.com/lastwill-labs/weave/x/escrow"
	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	var (
		testatorFl, payerFl, beneficiaryFl, verifierFl string
		identityFl, emailFl, documentFl                string
		contentIDFl, validatorFl                       string
		secretFl, keyMaterialFl                        string
		deposit                                        coin.Coin
		warning, total                                 time.Duration
		debug                                          bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a transaction opening an escrow",
		Long: `Create a transaction that opens an escrow for the beneficiary. The deposit is
moved into the custody address when the transaction is delivered.

Digests and secrets are hex encoded. Content identifiers are used as given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &escrow.CreateMsg{
				Metadata:           &weave.Metadata{Schema: 1},
				ContentID:          []byte(contentIDFl),
				ContentIDValidator: []byte(validatorFl),
				WarningTimeout:     weave.AsUnixDuration(warning),
				TotalTimeout:       weave.AsUnixDuration(total),
				DebugMode:          debug,
			}
			var err error
			if msg.Testator, err = parseAddress("testator", testatorFl); err != nil {
				return err
			}
			if msg.Payer, err = parseAddress("payer", payerFl); err != nil {
				return err
			}
			if msg.Beneficiary, err = requireAddress("beneficiary", beneficiaryFl); err != nil {
				return err
			}
			if msg.Verifier, err = requireAddress("verifier", verifierFl); err != nil {
				return err
			}
			if msg.IdentityHash, err = parseHex("identity hash", identityFl); err != nil {
				return err
			}
			if msg.EmailHash, err = parseHex("email hash", emailFl); err != nil {
				return err
			}
			if msg.DocumentIDHash, err = parseHex("document id hash", documentFl); err != nil {
				return err
			}
			if msg.EncryptedSecret, err = parseHex("encrypted secret", secretFl); err != nil {
				return err
			}
			if msg.UnwrappedKeyMaterial, err = parseHex("key material", keyMaterialFl); err != nil {
				return err
			}
			if deposit.Ticker == "" {
				return fmt.Errorf("deposit is required")
			}
			msg.Deposit = &deposit

			if err := msg.Validate(); err != nil {
				return fmt.Errorf("invalid message: %s", err)
			}
			return writeTx(cmd.OutOrStdout(), msg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&testatorFl, "testator", "", "testator address, defaults to the main signer")
	fl.StringVar(&payerFl, "payer", "", "address paying the deposit, defaults to the testator")
	fl.StringVar(&beneficiaryFl, "beneficiary", "", "beneficiary address")
	fl.StringVar(&verifierFl, "verifier", "", "address of the verifier co-signing the execution")
	fl.StringVar(&identityFl, "identity-hash", "", "32 byte identity digest")
	fl.StringVar(&emailFl, "email-hash", "", "32 byte email digest")
	fl.StringVar(&documentFl, "document-hash", "", "32 byte document id digest")
	fl.StringVar(&contentIDFl, "content-id", "", "content identifier of the payload")
	fl.StringVar(&validatorFl, "content-id-validator", "", "content identifier of the validator")
	fl.StringVar(&secretFl, "secret", "", "encrypted secret released on execution")
	fl.StringVar(&keyMaterialFl, "key-material", "", "32 byte unwrapped key material released on execution")
	fl.Var(&deposit, "deposit", `deposited value, for example "10 LWT"`)
	fl.DurationVar(&warning, "warning", 30*24*time.Hour, "inactivity after which the escrow is displayed as warning")
	fl.DurationVar(&total, "total", 90*24*time.Hour, "inactivity after which the escrow can be executed")
	fl.BoolVar(&debug, "debug", false, "accept liveness refreshes without a proof")
	return cmd
}

func refreshCmd() *cobra.Command {
	var (
		testatorFl, beneficiaryFl string
		rootFl, commitmentFl      string
		proofFl                   []string
		index, total              int64
	)
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Create a transaction refreshing the testator liveness",
		Long: `Create a transaction that proves the testator is alive and restarts the
escrow timeout. Root, commitment and proof elements are hex encoded 32 byte
values. Without a root the published registry root is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &escrow.RefreshLivenessMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProofIndex: index,
				ProofTotal: total,
			}
			var err error
			if msg.Testator, err = parseAddress("testator", testatorFl); err != nil {
				return err
			}
			if msg.Beneficiary, err = requireAddress("beneficiary", beneficiaryFl); err != nil {
				return err
			}
			if msg.Root, err = parseHex("root", rootFl); err != nil {
				return err
			}
			if msg.Commitment, err = parseHex("commitment", commitmentFl); err != nil {
				return err
			}
			for _, p := range proofFl {
				el, err := parseHex("proof", p)
				if err != nil {
					return err
				}
				msg.Proof = append(msg.Proof, el)
			}
			if err := msg.Validate(); err != nil {
				return fmt.Errorf("invalid message: %s", err)
			}
			return writeTx(cmd.OutOrStdout(), msg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&testatorFl, "testator", "", "testator address, defaults to the main signer")
	fl.StringVar(&beneficiaryFl, "beneficiary", "", "beneficiary address")
	fl.StringVar(&rootFl, "root", "", "claimed registry root")
	fl.StringVar(&commitmentFl, "commitment", "", "liveness commitment to store")
	fl.StringSliceVar(&proofFl, "proof", nil, "proof elements, in order")
	fl.Int64Var(&index, "proof-index", 0, "position of the leaf in the registry tree")
	fl.Int64Var(&total, "proof-total", 0, "number of leaves in the registry tree")
	return cmd
}

func executeCmd() *cobra.Command {
	var (
		testatorFl, beneficiaryFl, verifierFl string
		transfer                              bool
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Create a transaction releasing an escrow",
		Long: `Create a transaction releasing the escrow to the beneficiary. It must be
signed by both the beneficiary and the verifier and is accepted only once the
testator failed to refresh liveness within the total timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &escrow.ExecuteMsg{
				Metadata:      &weave.Metadata{Schema: 1},
				TransferFunds: transfer,
			}
			var err error
			if msg.Testator, err = requireAddress("testator", testatorFl); err != nil {
				return err
			}
			if msg.Beneficiary, err = requireAddress("beneficiary", beneficiaryFl); err != nil {
				return err
			}
			if msg.Verifier, err = requireAddress("verifier", verifierFl); err != nil {
				return err
			}
			if err := msg.Validate(); err != nil {
				return fmt.Errorf("invalid message: %s", err)
			}
			return writeTx(cmd.OutOrStdout(), msg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&testatorFl, "testator", "", "testator address")
	fl.StringVar(&beneficiaryFl, "beneficiary", "", "beneficiary address")
	fl.StringVar(&verifierFl, "verifier", "", "verifier address")
	fl.BoolVar(&transfer, "transfer", true, "move the deposit to the beneficiary")
	return cmd
}

func cancelCmd() *cobra.Command {
	var testatorFl, beneficiaryFl string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Create a transaction cancelling an escrow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &escrow.CancelMsg{Metadata: &weave.Metadata{Schema: 1}}
			var err error
			if msg.Testator, err = parseAddress("testator", testatorFl); err != nil {
				return err
			}
			if msg.Beneficiary, err = requireAddress("beneficiary", beneficiaryFl); err != nil {
				return err
			}
			if err := msg.Validate(); err != nil {
				return fmt.Errorf("invalid message: %s", err)
			}
			return writeTx(cmd.OutOrStdout(), msg)
		},
	}
	cmd.Flags().StringVar(&testatorFl, "testator", "", "testator address, defaults to the main signer")
	cmd.Flags().StringVar(&beneficiaryFl, "beneficiary", "", "beneficiary address")
	return cmd
}
