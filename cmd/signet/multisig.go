package main

import (
	"fmt"
	"log/slog"

	bin "github.com/gagliardetto/binary"
	"github.com/spf13/cobra"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/app"
	"github.com/signet-one/signet/x/multisig"
)

func multisigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multisig",
		Short: "Manage M-of-N multisig wallets",
	}
	cmd.AddCommand(
		multisigCreateCommand(),
		multisigProposeCommand(),
		multisigVoteCommand("approve", multisig.PathApprove),
		multisigVoteCommand("reject", multisig.PathReject),
		multisigExecuteCommand(),
		multisigShowCommand(),
	)
	return cmd
}

// multisigEnvelope wraps a multisig instruction into an envelope against
// the wallet's state PDA.
func multisigEnvelope(e *env, msg signet.Msg, signers []signet.AccountID, targets ...signet.AccountID) (*app.Envelope, error) {
	instruction, err := multisig.EncodeInstruction(msg)
	if err != nil {
		return nil, err
	}
	accounts := []signet.AccountID{multisig.StateAccount(e.multisigID)}
	accounts = append(accounts, signers...)
	accounts = append(accounts, targets...)
	return &app.Envelope{
		Program:     e.multisigID,
		Instruction: instruction,
		Accounts:    accounts,
		Signers:     signers,
	}, nil
}

func multisigCreateCommand() *cobra.Command {
	var (
		members   []string
		threshold uint8
		signer    string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet with the given members and threshold",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			memberIDs, err := parseIDs(members)
			if err != nil {
				return err
			}
			creator, err := parseID(signer)
			if err != nil {
				return err
			}
			envlp, err := multisigEnvelope(e, &multisig.CreateMultisigMsg{
				Threshold: threshold,
				Members:   memberIDs,
			}, []signet.AccountID{creator})
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("wallet created",
				"state", multisig.StateAccount(e.multisigID),
				"members", len(memberIDs),
				"threshold", threshold,
			)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&members, "member", nil, "member account id (repeatable)")
	cmd.Flags().Uint8Var(&threshold, "threshold", 0, "number of approvals required")
	cmd.Flags().StringVar(&signer, "signer", "", "creator account id")
	return cmd
}

func multisigProposeCommand() *cobra.Command {
	var (
		signer    string
		recipient string
		amount    uint64
		member    string
		threshold uint8
	)
	cmd := &cobra.Command{
		Use:   "propose (transfer|add-member|remove-member|change-threshold)",
		Short: "Open a proposal; the proposer's approval is counted",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			proposer, err := parseID(signer)
			if err != nil {
				return err
			}

			var action multisig.Action
			switch args[0] {
			case "transfer":
				to, err := parseID(recipient)
				if err != nil {
					return err
				}
				action = &multisig.TransferAction{
					Recipient: to,
					Amount:    bin.Uint128{Lo: amount},
				}
			case "add-member":
				id, err := parseID(member)
				if err != nil {
					return err
				}
				action = &multisig.AddMemberAction{NewMember: id}
			case "remove-member":
				id, err := parseID(member)
				if err != nil {
					return err
				}
				action = &multisig.RemoveMemberAction{Member: id}
			case "change-threshold":
				action = &multisig.ChangeThresholdAction{NewThreshold: threshold}
			default:
				return fmt.Errorf("unknown action %q", args[0])
			}

			envlp, err := multisigEnvelope(e, &multisig.ProposeMsg{Action: action}, []signet.AccountID{proposer})
			if err != nil {
				return err
			}
			res, err := e.submit(envlp)
			if err != nil {
				return err
			}
			index, err := multisig.ProposalIndexFromResult(res)
			if err != nil {
				return err
			}
			slog.Info("proposal opened", "index", index, "action", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "proposing member account id")
	cmd.Flags().StringVar(&recipient, "recipient", "", "transfer recipient vault")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "transfer amount")
	cmd.Flags().StringVar(&member, "member", "", "member to add or remove")
	cmd.Flags().Uint8Var(&threshold, "threshold", 0, "new threshold")
	return cmd
}

func multisigVoteCommand(name, path string) *cobra.Command {
	var (
		signer   string
		proposal uint64
	)
	cmd := &cobra.Command{
		Use:   name,
		Short: "Record a vote on an active proposal",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			voter, err := parseID(signer)
			if err != nil {
				return err
			}
			var msg signet.Msg
			if path == multisig.PathApprove {
				msg = &multisig.ApproveMsg{ProposalIndex: proposal}
			} else {
				msg = &multisig.RejectMsg{ProposalIndex: proposal}
			}
			envlp, err := multisigEnvelope(e, msg, []signet.AccountID{voter})
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("vote recorded", "proposal", proposal, "vote", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "voting member account id")
	cmd.Flags().Uint64Var(&proposal, "proposal", 0, "proposal index")
	return cmd
}

func multisigExecuteCommand() *cobra.Command {
	var (
		signer   string
		proposal uint64
		source   string
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a proposal that reached its threshold",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			executor, err := parseID(signer)
			if err != nil {
				return err
			}
			state, err := loadMultisigState(e)
			if err != nil {
				return err
			}
			prop := state.Proposal(proposal)
			if prop == nil {
				return fmt.Errorf("no proposal with index %d", proposal)
			}

			// Transfers need their target accounts resolved; membership
			// actions operate on the state account alone.
			var targets []signet.AccountID
			if act, ok := prop.Action.(*multisig.TransferAction); ok {
				sourceID, err := parseID(source)
				if err != nil {
					return err
				}
				targets = []signet.AccountID{
					sourceID,
					act.Recipient,
					multisig.StateAccount(e.multisigID),
				}
			}

			envlp, err := multisigEnvelope(e, &multisig.ExecuteMsg{ProposalIndex: proposal},
				[]signet.AccountID{executor}, targets...)
			if err != nil {
				return err
			}
			if _, err := e.submit(envlp); err != nil {
				return err
			}
			slog.Info("proposal executed", "proposal", proposal)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "executing member account id")
	cmd.Flags().Uint64Var(&proposal, "proposal", 0, "proposal index")
	cmd.Flags().StringVar(&source, "source", "", "source vault for transfer proposals")
	return cmd
}

func multisigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the wallet state and its retained proposals",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			state, err := loadMultisigState(e)
			if err != nil {
				return err
			}
			fmt.Printf("state account: %s\n", multisig.StateAccount(e.multisigID))
			fmt.Printf("threshold:     %d of %d\n", state.Threshold, state.MemberCount)
			for _, member := range state.Members {
				fmt.Printf("member:        %s\n", member)
			}
			fmt.Printf("next index:    %d\n", state.TransactionIndex+1)
			for i := range state.Proposals {
				p := &state.Proposals[i]
				fmt.Printf("proposal %d: %s, %d approved, %d rejected\n",
					p.Index, p.Status, len(p.Approved), len(p.Rejected))
			}
			return nil
		},
	}
	return cmd
}

func loadMultisigState(e *env) (*multisig.State, error) {
	acct, err := app.LoadAccount(e.db, multisig.StateAccount(e.multisigID))
	if err != nil {
		return nil, err
	}
	if acct.IsEmpty() {
		return nil, fmt.Errorf("no wallet at %s", acct.ID)
	}
	return multisig.UnmarshalState(acct.Data)
}
