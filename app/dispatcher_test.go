package app

import (
	"testing"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
	"github.com/signet-one/signet/signettest"
	"github.com/signet-one/signet/store"
	"github.com/signet-one/signet/x/multisig"
	"github.com/signet-one/signet/x/treasury"
)

// fixture wires the multisig and treasury programs into a dispatcher over
// a fresh in-memory ledger, the way the simulator does.
type fixture struct {
	db         store.CacheableKVStore
	dispatcher *Dispatcher

	multisigID signet.ProgramID
	treasuryID signet.ProgramID

	members []signet.AccountID
	stateID signet.AccountID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:         store.MemStore(),
		multisigID: signettest.ProgramID(1),
		treasuryID: signettest.ProgramID(2),
		members:    signettest.AccountIDs(3),
	}
	f.stateID = multisig.StateAccount(f.multisigID)
	f.dispatcher = NewDispatcher(f.db)

	msRouter := NewRouter()
	multisig.RegisterRoutes(msRouter, f.treasuryID)
	f.dispatcher.RegisterProgram(f.multisigID, multisig.DecodeInstruction, msRouter)

	trRouter := NewRouter()
	treasury.RegisterRoutes(trRouter)
	f.dispatcher.RegisterProgram(f.treasuryID, treasury.DecodeInstruction, trRouter)

	return f
}

func (f *fixture) multisigTx(t *testing.T, msg signet.Msg, signers []signet.AccountID, targets ...signet.AccountID) (*signet.Result, error) {
	t.Helper()
	instruction, err := multisig.EncodeInstruction(msg)
	if err != nil {
		t.Fatalf("encode: %+v", err)
	}
	accounts := append([]signet.AccountID{f.stateID}, signers...)
	accounts = append(accounts, targets...)
	return f.dispatcher.Deliver(&Envelope{
		Program:     f.multisigID,
		Instruction: instruction,
		Accounts:    accounts,
		Signers:     signers,
	})
}

func (f *fixture) treasuryTx(t *testing.T, msg signet.Msg, accounts, signers []signet.AccountID) (*signet.Result, error) {
	t.Helper()
	instruction, err := treasury.EncodeInstruction(msg)
	if err != nil {
		t.Fatalf("encode: %+v", err)
	}
	return f.dispatcher.Deliver(&Envelope{
		Program:     f.treasuryID,
		Instruction: instruction,
		Accounts:    accounts,
		Signers:     signers,
	})
}

func (f *fixture) createWallet(t *testing.T, threshold uint8) {
	t.Helper()
	_, err := f.multisigTx(t, &multisig.CreateMultisigMsg{
		Threshold: threshold,
		Members:   f.members,
	}, f.members[:1])
	if err != nil {
		t.Fatalf("create wallet: %+v", err)
	}
}

func (f *fixture) wallet(t *testing.T) *multisig.State {
	t.Helper()
	acct, err := LoadAccount(f.db, f.stateID)
	if err != nil {
		t.Fatalf("load wallet: %+v", err)
	}
	state, err := multisig.UnmarshalState(acct.Data)
	if err != nil {
		t.Fatalf("unmarshal wallet: %+v", err)
	}
	return state
}

func (f *fixture) vault(t *testing.T, id signet.AccountID) *treasury.Vault {
	t.Helper()
	acct, err := LoadAccount(f.db, id)
	if err != nil {
		t.Fatalf("load vault: %+v", err)
	}
	vault, err := treasury.UnmarshalVault(acct.Data)
	if err != nil {
		t.Fatalf("unmarshal vault: %+v", err)
	}
	return vault
}

// setupGovernedVault initializes the treasury and creates two vaults: one
// owned by the multisig state PDA and funded, one user-owned and empty.
func (f *fixture) setupGovernedVault(t *testing.T, funds uint64) (source, recipient signet.AccountID) {
	t.Helper()
	authority := f.members[0]
	trState := treasury.StateAccount(f.treasuryID)

	if _, err := f.treasuryTx(t, &treasury.InitMsg{},
		[]signet.AccountID{trState, authority},
		[]signet.AccountID{authority},
	); err != nil {
		t.Fatalf("init treasury: %+v", err)
	}

	source = treasury.VaultAccount(f.treasuryID, 0)
	if _, err := f.treasuryTx(t, &treasury.CreateVaultMsg{Owner: f.stateID},
		[]signet.AccountID{trState, source, authority},
		[]signet.AccountID{authority},
	); err != nil {
		t.Fatalf("create governed vault: %+v", err)
	}

	recipient = treasury.VaultAccount(f.treasuryID, 1)
	if _, err := f.treasuryTx(t, &treasury.CreateVaultMsg{Owner: authority},
		[]signet.AccountID{trState, recipient, authority},
		[]signet.AccountID{authority},
	); err != nil {
		t.Fatalf("create recipient vault: %+v", err)
	}

	if _, err := f.treasuryTx(t, &treasury.DepositMsg{Amount: funds},
		[]signet.AccountID{source, authority},
		[]signet.AccountID{authority},
	); err != nil {
		t.Fatalf("fund vault: %+v", err)
	}
	return source, recipient
}

func TestDispatcherGovernedTransfer(t *testing.T) {
	f := newFixture(t)
	f.createWallet(t, 2)
	source, recipient := f.setupGovernedVault(t, 1000)

	// Propose a transfer out of the governed vault.
	res, err := f.multisigTx(t, &multisig.ProposeMsg{
		Action: &multisig.TransferAction{Recipient: recipient, Amount: bin.Uint128{Lo: 400}},
	}, f.members[:1])
	if err != nil {
		t.Fatalf("propose: %+v", err)
	}
	index, err := multisig.ProposalIndexFromResult(res)
	if err != nil {
		t.Fatalf("proposal index: %+v", err)
	}

	// A second approval reaches the 2-of-3 quorum.
	if _, err := f.multisigTx(t, &multisig.ApproveMsg{ProposalIndex: index}, f.members[1:2]); err != nil {
		t.Fatalf("approve: %+v", err)
	}

	// Execution relays the chained treasury call; balances move.
	if _, err := f.multisigTx(t, &multisig.ExecuteMsg{ProposalIndex: index},
		f.members[:1], source, recipient, f.stateID); err != nil {
		t.Fatalf("execute: %+v", err)
	}

	if got := f.vault(t, source).Balance; got != 600 {
		t.Fatalf("want source balance 600, got %d", got)
	}
	if got := f.vault(t, recipient).Balance; got != 400 {
		t.Fatalf("want recipient balance 400, got %d", got)
	}
	if p := f.wallet(t).Proposal(index); p != nil {
		t.Fatal("executed proposal must be pruned from the wallet")
	}
}

func TestDispatcherRollsBackFailedChainedCall(t *testing.T) {
	f := newFixture(t)
	f.createWallet(t, 2)
	// Not enough funds to satisfy the approved transfer.
	source, recipient := f.setupGovernedVault(t, 100)

	res, err := f.multisigTx(t, &multisig.ProposeMsg{
		Action: &multisig.TransferAction{Recipient: recipient, Amount: bin.Uint128{Lo: 400}},
	}, f.members[:1])
	if err != nil {
		t.Fatalf("propose: %+v", err)
	}
	index, err := multisig.ProposalIndexFromResult(res)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.multisigTx(t, &multisig.ApproveMsg{ProposalIndex: index}, f.members[1:2]); err != nil {
		t.Fatalf("approve: %+v", err)
	}

	_, err = f.multisigTx(t, &multisig.ExecuteMsg{ProposalIndex: index},
		f.members[:1], source, recipient, f.stateID)
	if !treasury.ErrInsufficientFunds.Is(err) {
		t.Fatalf("want ErrInsufficientFunds, got %+v", err)
	}

	// The whole transaction must roll back: balances untouched and the
	// proposal still live and executable later.
	if got := f.vault(t, source).Balance; got != 100 {
		t.Fatalf("want source balance 100, got %d", got)
	}
	if p := f.wallet(t).Proposal(index); p == nil || p.Status != multisig.StatusActive {
		t.Fatal("failed execution must leave the proposal Active")
	}
}

func TestDispatcherRejectedProposalLifecycle(t *testing.T) {
	f := newFixture(t)
	f.createWallet(t, 2)

	res, err := f.multisigTx(t, &multisig.ProposeMsg{
		Action: &multisig.ChangeThresholdAction{NewThreshold: 3},
	}, f.members[:1])
	if err != nil {
		t.Fatalf("propose: %+v", err)
	}
	index, err := multisig.ProposalIndexFromResult(res)
	if err != nil {
		t.Fatal(err)
	}

	// Two of three members reject: quorum is unreachable.
	if _, err := f.multisigTx(t, &multisig.RejectMsg{ProposalIndex: index}, f.members[1:2]); err != nil {
		t.Fatalf("first reject: %+v", err)
	}
	if _, err := f.multisigTx(t, &multisig.RejectMsg{ProposalIndex: index}, f.members[2:3]); err != nil {
		t.Fatalf("second reject: %+v", err)
	}

	if p := f.wallet(t).Proposal(index); p == nil || p.Status != multisig.StatusRejected {
		t.Fatal("dead proposal must be resolved as Rejected")
	}

	// Voting on the resolved proposal is a distinct failure from voting on
	// an unknown one.
	_, err = f.multisigTx(t, &multisig.ApproveMsg{ProposalIndex: index}, f.members[:1])
	if !multisig.ErrProposalNotActive.Is(err) {
		t.Fatalf("want ErrProposalNotActive, got %+v", err)
	}
	_, err = f.multisigTx(t, &multisig.ApproveMsg{ProposalIndex: 99}, f.members[:1])
	if !multisig.ErrProposalNotFound.Is(err) {
		t.Fatalf("want ErrProposalNotFound, got %+v", err)
	}

	// The next proposal prunes the rejected one and takes a fresh index.
	res, err = f.multisigTx(t, &multisig.ProposeMsg{
		Action: &multisig.ChangeThresholdAction{NewThreshold: 1},
	}, f.members[:1])
	if err != nil {
		t.Fatalf("second propose: %+v", err)
	}
	next, err := multisig.ProposalIndexFromResult(res)
	if err != nil {
		t.Fatal(err)
	}
	if next != index+1 {
		t.Fatalf("want index %d, got %d", index+1, next)
	}
	if p := f.wallet(t).Proposal(index); p != nil {
		t.Fatal("rejected proposal must be pruned by the next mutation")
	}
}

func TestDispatcherUnknownProgram(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatcher.Deliver(&Envelope{
		Program:     signettest.ProgramID(99),
		Instruction: []byte{0},
	})
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want ErrNotFound, got %+v", err)
	}
}

func TestDispatcherSeedVerification(t *testing.T) {
	f := newFixture(t)

	// A chained call pre-authorizing an account the caller cannot prove
	// ownership of must be refused.
	err := f.dispatcher.relay(f.db, f.multisigID, signet.ChainedCall{
		ProgramID: f.treasuryID,
		Data:      mustEncodeTreasury(t, &treasury.DepositMsg{Amount: 1}),
		Accounts: []signet.AccountWithMetadata{
			signettest.Acct(signettest.AccountID(50), nil, true),
		},
		Seeds: nil,
	}, 2)
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want ErrUnauthorized, got %+v", err)
	}
}

func TestDispatcherCheckDoesNotPersist(t *testing.T) {
	f := newFixture(t)

	instruction, err := multisig.EncodeInstruction(&multisig.CreateMultisigMsg{
		Threshold: 2,
		Members:   f.members,
	})
	if err != nil {
		t.Fatal(err)
	}
	env := &Envelope{
		Program:     f.multisigID,
		Instruction: instruction,
		Accounts:    []signet.AccountID{f.stateID, f.members[0]},
		Signers:     f.members[:1],
	}
	if err := f.dispatcher.Check(env); err != nil {
		t.Fatalf("check: %+v", err)
	}
	if acct, _ := LoadAccount(f.db, f.stateID); !acct.IsEmpty() {
		t.Fatal("check must not write to the ledger")
	}
}

// pingMsg is a minimal message for exercising the dispatcher plumbing
// without dragging a real program in.
type pingMsg struct{}

func (pingMsg) Path() string    { return "ping/ping" }
func (pingMsg) Validate() error { return nil }

func TestDispatcherRoutesCheckAndDeliver(t *testing.T) {
	db := store.MemStore()
	d := NewDispatcher(db)

	h := &signettest.Handler{}
	r := NewRouter()
	r.Handle("ping/ping", h)
	progID := signettest.ProgramID(7)
	d.RegisterProgram(progID, func([]byte) (signet.Msg, error) { return pingMsg{}, nil }, r)

	env := &Envelope{
		Program:  progID,
		Accounts: []signet.AccountID{signettest.RandomAccountID(t)},
	}
	if err := d.Check(env); err != nil {
		t.Fatalf("check: %+v", err)
	}
	if _, err := d.Deliver(env); err != nil {
		t.Fatalf("deliver: %+v", err)
	}
	if h.CheckCallCount() != 1 || h.DeliverCallCount() != 1 {
		t.Fatalf("want one check and one deliver, got %d and %d",
			h.CheckCallCount(), h.DeliverCallCount())
	}
	if h.CallCount() != 2 {
		t.Fatalf("want 2 handler calls, got %d", h.CallCount())
	}
}

func mustEncodeTreasury(t *testing.T, msg signet.Msg) []byte {
	t.Helper()
	raw, err := treasury.EncodeInstruction(msg)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}
