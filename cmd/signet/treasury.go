package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/app"
	"github.com/signet-one/signet/x/treasury"
)

func treasuryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treasury",
		Short: "Manage vaults and balances",
	}
	cmd.AddCommand(
		treasuryInitCommand(),
		treasuryCreateVaultCommand(),
		treasuryMoveCommand("deposit", "Credit a vault"),
		treasuryMoveCommand("withdraw", "Debit a vault as its owner"),
		treasuryTransferCommand(),
		treasuryShowCommand(),
	)
	return cmd
}

func treasuryEnvelope(e *env, msg signet.Msg, accounts []signet.AccountID, signers []signet.AccountID) (*app.Envelope, error) {
	instruction, err := treasury.EncodeInstruction(msg)
	if err != nil {
		return nil, err
	}
	return &app.Envelope{
		Program:     e.treasuryID,
		Instruction: instruction,
		Accounts:    accounts,
		Signers:     signers,
	}, nil
}

func treasuryInitCommand() *cobra.Command {
	var signer string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the treasury singleton",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			authority, err := parseID(signer)
			if err != nil {
				return err
			}
			state := treasury.StateAccount(e.treasuryID)
			envlp, err := treasuryEnvelope(e, &treasury.InitMsg{},
				[]signet.AccountID{state, authority},
				[]signet.AccountID{authority})
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("treasury initialized", "state", state)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "authority account id")
	return cmd
}

func treasuryCreateVaultCommand() *cobra.Command {
	var (
		signer string
		owner  string
	)
	cmd := &cobra.Command{
		Use:   "create-vault",
		Short: "Create a vault; pass the multisig state PDA as owner for a governed vault",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			creator, err := parseID(signer)
			if err != nil {
				return err
			}
			ownerID, err := parseID(owner)
			if err != nil {
				return err
			}
			state, err := loadTreasuryState(e)
			if err != nil {
				return err
			}
			vault := treasury.VaultAccount(e.treasuryID, state.VaultCount)
			envlp, err := treasuryEnvelope(e, &treasury.CreateVaultMsg{Owner: ownerID},
				[]signet.AccountID{treasury.StateAccount(e.treasuryID), vault, creator},
				[]signet.AccountID{creator})
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("vault created", "vault", vault, "owner", ownerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "creator account id")
	cmd.Flags().StringVar(&owner, "owner", "", "vault owner account id")
	return cmd
}

func treasuryMoveCommand(name, short string) *cobra.Command {
	var (
		signer string
		vault  string
		amount uint64
	)
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			actor, err := parseID(signer)
			if err != nil {
				return err
			}
			vaultID, err := parseID(vault)
			if err != nil {
				return err
			}
			var msg signet.Msg
			if name == "deposit" {
				msg = &treasury.DepositMsg{Amount: amount}
			} else {
				msg = &treasury.WithdrawMsg{Amount: amount}
			}
			envlp, err := treasuryEnvelope(e, msg,
				[]signet.AccountID{vaultID, actor},
				[]signet.AccountID{actor})
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info(name+" applied", "vault", vaultID, "amount", amount)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "acting account id")
	cmd.Flags().StringVar(&vault, "vault", "", "vault account id")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to move")
	return cmd
}

func treasuryTransferCommand() *cobra.Command {
	var (
		signer string
		from   string
		to     string
		amount uint64
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between vaults as the source owner",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			ownerID, err := parseID(signer)
			if err != nil {
				return err
			}
			fromID, err := parseID(from)
			if err != nil {
				return err
			}
			toID, err := parseID(to)
			if err != nil {
				return err
			}
			envlp, err := treasuryEnvelope(e, &treasury.TransferMsg{Amount: amount},
				[]signet.AccountID{fromID, toID, ownerID},
				[]signet.AccountID{ownerID})
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("transfer applied", "from", fromID, "to", toID, "amount", amount)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "source vault owner account id")
	cmd.Flags().StringVar(&from, "from", "", "source vault account id")
	cmd.Flags().StringVar(&to, "to", "", "recipient vault account id")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to move")
	return cmd
}

func treasuryShowCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the treasury state or a single vault",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			if vault != "" {
				vaultID, err := parseID(vault)
				if err != nil {
					return err
				}
				acct, err := app.LoadAccount(e.db, vaultID)
				if err != nil {
					return err
				}
				if acct.IsEmpty() {
					return fmt.Errorf("no vault at %s", vaultID)
				}
				v, err := treasury.UnmarshalVault(acct.Data)
				if err != nil {
					return err
				}
				fmt.Printf("vault:   %s\n", vaultID)
				fmt.Printf("owner:   %s\n", v.Owner)
				fmt.Printf("balance: %d\n", v.Balance)
				return nil
			}
			state, err := loadTreasuryState(e)
			if err != nil {
				return err
			}
			fmt.Printf("state account: %s\n", treasury.StateAccount(e.treasuryID))
			fmt.Printf("authority:     %s\n", state.Authority)
			fmt.Printf("vaults:        %d\n", state.VaultCount)
			for i := uint64(0); i < state.VaultCount; i++ {
				fmt.Printf("vault %d:      %s\n", i, treasury.VaultAccount(e.treasuryID, i))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "vault account id to inspect")
	return cmd
}

func loadTreasuryState(e *env) (*treasury.State, error) {
	acct, err := app.LoadAccount(e.db, treasury.StateAccount(e.treasuryID))
	if err != nil {
		return nil, err
	}
	if acct.IsEmpty() {
		return nil, fmt.Errorf("treasury not initialized, run 'signet treasury init'")
	}
	return treasury.UnmarshalState(acct.Data)
}
