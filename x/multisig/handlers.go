package multisig

import (
	"encoding/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
	"github.com/signet-one/signet/x/treasury"
)

// Fixed account positions shared by every instruction.
const (
	stateAccountIdx  = 0
	signerAccountIdx = 1
	// Execute passes its target accounts after state and executor.
	targetAccountsIdx = 2
)

// RegisterRoutes instantiates and registers all handlers in this package.
// The treasury program id is needed to build the delegated call a Transfer
// proposal resolves into.
func RegisterRoutes(r signet.Registry, treasuryID signet.ProgramID) {
	r.Handle(PathCreateMultisig, CreateMultisigHandler{})
	r.Handle(PathPropose, ProposeHandler{})
	r.Handle(PathApprove, VoteHandler{approve: true})
	r.Handle(PathReject, VoteHandler{approve: false})
	r.Handle(PathExecute, ExecuteHandler{treasuryID: treasuryID})
	r.Handle(PathAddMember, DirectHandler{apply: applyAddMember})
	r.Handle(PathRemoveMember, DirectHandler{apply: applyRemoveMember})
	r.Handle(PathChangeThreshold, DirectHandler{apply: applyChangeThreshold})
}

// loadState decodes the configuration account, which must be initialized.
func loadState(acc signet.AccountWithMetadata) (*State, error) {
	if acc.IsEmpty() {
		return nil, errors.Wrap(errors.ErrNotFound, "multisig not initialized")
	}
	state, err := UnmarshalState(acc.Data)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// saveState builds the post snapshot of the configuration account.
func saveState(id signet.AccountID, state *State) (signet.Account, error) {
	data, err := MarshalState(state)
	if err != nil {
		return signet.Account{}, err
	}
	return signet.Account{ID: id, Data: data}, nil
}

// signerMember ensures the account at position signerAccountIdx signed the
// transaction and is a roster member, returning its id.
func signerMember(call *signet.Call, state *State) (signet.AccountID, error) {
	if len(call.Accounts) <= signerAccountIdx {
		return signet.AccountID{}, errors.Wrap(ErrAccountCount, "missing signer account")
	}
	signer := call.Accounts[signerAccountIdx]
	if !signer.IsAuthorized {
		return signet.AccountID{}, errors.Wrapf(ErrNotSigner, "%s", signer.ID)
	}
	if !state.IsMember(signer.ID) {
		return signet.AccountID{}, errors.Wrapf(ErrNotMember, "%s", signer.ID)
	}
	return signer.ID, nil
}

// CreateMultisigHandler initializes the configuration account.
type CreateMultisigHandler struct{}

var _ signet.Handler = CreateMultisigHandler{}

func (h CreateMultisigHandler) Check(call *signet.Call) error {
	_, err := h.validate(call)
	return err
}

func (h CreateMultisigHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	state, err := NewState(msg.Threshold, msg.Members)
	if err != nil {
		return nil, err
	}
	post, err := saveState(call.Accounts[stateAccountIdx].ID, state)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h CreateMultisigHandler) validate(call *signet.Call) (*CreateMultisigMsg, error) {
	msg, ok := call.Msg.(*CreateMultisigMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if len(call.Accounts) == 0 {
		return nil, errors.Wrap(ErrAccountCount, "missing state account")
	}
	if !call.Accounts[stateAccountIdx].IsEmpty() {
		return nil, errors.Wrap(errors.ErrDuplicate, "multisig already initialized")
	}
	return msg, nil
}

// ProposeHandler creates a new proposal and auto-approves the proposer.
type ProposeHandler struct{}

var _ signet.Handler = ProposeHandler{}

func (h ProposeHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h ProposeHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, state, err := h.validate(call)
	if err != nil {
		return nil, err
	}

	// Resolved proposals left behind by earlier instructions are pruned
	// on the next mutation of the live set.
	state.CleanupProposals()
	index := state.CreateProposal(msg.Action, call.Accounts[signerAccountIdx].ID)

	post, err := saveState(call.Accounts[stateAccountIdx].ID, state)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, index)
	return &signet.Result{Post: []signet.Account{post}, Data: data}, nil
}

// ProposalIndexFromResult decodes the proposal index a successful propose
// instruction returned in its result payload.
func ProposalIndexFromResult(res *signet.Result) (uint64, error) {
	if res == nil || len(res.Data) != 8 {
		return 0, errors.Wrap(errors.ErrInput, "result carries no proposal index")
	}
	return binary.LittleEndian.Uint64(res.Data), nil
}

func (h ProposeHandler) validate(call *signet.Call) (*ProposeMsg, *State, error) {
	msg, ok := call.Msg.(*ProposeMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	state, err := loadState(call.Account(stateAccountIdx))
	if err != nil {
		return nil, nil, err
	}
	if _, err := signerMember(call, state); err != nil {
		return nil, nil, err
	}
	return msg, state, nil
}

// VoteHandler records an approval or a rejection on a live proposal. A
// rejection that makes quorum unreachable resolves the proposal
// immediately.
type VoteHandler struct {
	approve bool
}

var _ signet.Handler = VoteHandler{}

func (h VoteHandler) Check(call *signet.Call) error {
	_, _, _, err := h.validate(call)
	return err
}

func (h VoteHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	voter, state, proposal, err := h.validate(call)
	if err != nil {
		return nil, err
	}

	if h.approve {
		proposal.Approve(voter)
	} else {
		proposal.Reject(voter)
		if proposal.IsDead(state.Threshold, state.MemberCount) {
			proposal.Status = StatusRejected
		}
	}

	post, err := saveState(call.Accounts[stateAccountIdx].ID, state)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h VoteHandler) validate(call *signet.Call) (signet.AccountID, *State, *Proposal, error) {
	var index uint64
	switch msg := call.Msg.(type) {
	case *ApproveMsg:
		if !h.approve {
			return signet.AccountID{}, nil, nil, errors.WithType(errors.ErrType, call.Msg)
		}
		if err := msg.Validate(); err != nil {
			return signet.AccountID{}, nil, nil, err
		}
		index = msg.ProposalIndex
	case *RejectMsg:
		if h.approve {
			return signet.AccountID{}, nil, nil, errors.WithType(errors.ErrType, call.Msg)
		}
		if err := msg.Validate(); err != nil {
			return signet.AccountID{}, nil, nil, err
		}
		index = msg.ProposalIndex
	default:
		return signet.AccountID{}, nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}

	state, err := loadState(call.Account(stateAccountIdx))
	if err != nil {
		return signet.AccountID{}, nil, nil, err
	}
	voter, err := signerMember(call, state)
	if err != nil {
		return signet.AccountID{}, nil, nil, err
	}
	proposal := state.Proposal(index)
	if proposal == nil {
		return signet.AccountID{}, nil, nil, errors.Wrapf(ErrProposalNotFound, "index %d", index)
	}
	if proposal.Status != StatusActive {
		return signet.AccountID{}, nil, nil, errors.Wrapf(ErrProposalNotActive, "status %s", proposal.Status)
	}
	return voter, state, proposal, nil
}

// ExecuteHandler resolves a proposal that reached quorum. Membership and
// threshold actions mutate the configuration in place; transfer and
// delegated-call actions emit a ChainedCall descriptor and leave the
// actual effect to the target program. The multisig owns authorization,
// never custody.
type ExecuteHandler struct {
	treasuryID signet.ProgramID
}

var _ signet.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h ExecuteHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	state, proposal, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	targets := call.Accounts[targetAccountsIdx:]

	var calls []signet.ChainedCall
	switch action := proposal.Action.(type) {
	case *AddMemberAction:
		if err := applyAddMember(state, &AddMemberMsg{NewMember: action.NewMember}); err != nil {
			return nil, err
		}
	case *RemoveMemberAction:
		if err := applyRemoveMember(state, &RemoveMemberMsg{Member: action.Member}); err != nil {
			return nil, err
		}
	case *ChangeThresholdAction:
		if err := applyChangeThreshold(state, &ChangeThresholdMsg{NewThreshold: action.NewThreshold}); err != nil {
			return nil, err
		}
	case *TransferAction:
		cc, err := h.transferCall(call, action, targets)
		if err != nil {
			return nil, err
		}
		calls = append(calls, cc)
	case *CallAction:
		calls = append(calls, delegatedCall(action, targets))
	default:
		return nil, errors.WithType(errors.ErrType, proposal.Action)
	}

	proposal.Status = StatusExecuted
	state.CleanupProposals()

	post, err := saveState(call.Accounts[stateAccountIdx].ID, state)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{post}, Calls: calls}, nil
}

func (h ExecuteHandler) validate(call *signet.Call) (*State, *Proposal, error) {
	msg, ok := call.Msg.(*ExecuteMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	state, err := loadState(call.Account(stateAccountIdx))
	if err != nil {
		return nil, nil, err
	}
	if _, err := signerMember(call, state); err != nil {
		return nil, nil, err
	}
	proposal := state.Proposal(msg.ProposalIndex)
	if proposal == nil {
		return nil, nil, errors.Wrapf(ErrProposalNotFound, "index %d", msg.ProposalIndex)
	}
	if proposal.Status != StatusActive {
		return nil, nil, errors.Wrapf(ErrProposalNotActive, "status %s", proposal.Status)
	}
	if !proposal.HasThreshold(state.Threshold) {
		return nil, nil, errors.Wrapf(ErrThresholdNotMet, "need %d, have %d",
			state.Threshold, len(proposal.Approved))
	}
	if want, got := proposal.Action.TargetAccountCount(), len(call.Accounts)-targetAccountsIdx; want != got {
		return nil, nil, errors.Wrapf(ErrAccountCount, "want %d target accounts, got %d", want, got)
	}
	return state, proposal, nil
}

// transferCall builds the delegated treasury transfer for a Transfer
// action. Targets are [source vault, recipient vault, vault owner]; the
// owner must be this multisig's own state account, which the call
// pre-authorizes through the state PDA seed.
func (h ExecuteHandler) transferCall(call *signet.Call, action *TransferAction, targets []signet.AccountWithMetadata) (signet.ChainedCall, error) {
	if action.Amount.Hi != 0 {
		return signet.ChainedCall{}, errors.Wrap(errors.ErrOverflow, "amount exceeds vault capacity")
	}
	if !targets[1].ID.Equals(action.Recipient) {
		return signet.ChainedCall{}, errors.Wrapf(errors.ErrInput,
			"recipient account %s does not match proposal recipient %s", targets[1].ID, action.Recipient)
	}
	stateID := call.Accounts[stateAccountIdx].ID
	if !targets[2].ID.Equals(stateID) {
		return signet.ChainedCall{}, errors.Wrapf(errors.ErrInput,
			"vault owner %s is not the multisig state account", targets[2].ID)
	}

	data, err := treasury.EncodeInstruction(&treasury.TransferMsg{Amount: action.Amount.Lo})
	if err != nil {
		return signet.ChainedCall{}, err
	}

	pre := make([]signet.AccountWithMetadata, len(targets))
	for i, acc := range targets {
		pre[i] = acc.CopyMeta()
	}
	pre[2].IsAuthorized = true

	return signet.ChainedCall{
		ProgramID: h.treasuryID,
		Data:      data,
		Accounts:  pre,
		Seeds:     []signet.PdaSeed{StateSeed()},
	}, nil
}

// delegatedCall relays an opaque CallAction, flagging the accounts the
// quorum pre-authorized.
func delegatedCall(action *CallAction, targets []signet.AccountWithMetadata) signet.ChainedCall {
	pre := make([]signet.AccountWithMetadata, len(targets))
	for i, acc := range targets {
		pre[i] = acc.CopyMeta()
	}
	for _, idx := range action.AuthorizedIndices {
		pre[idx].IsAuthorized = true
	}
	return signet.ChainedCall{
		ProgramID: action.ProgramID,
		Data:      action.Data,
		Accounts:  pre,
		Seeds:     action.Seeds,
	}
}

// DirectHandler serves the membership and threshold instructions that skip
// the proposal flow. They require threshold-many current members to sign
// the very same transaction.
type DirectHandler struct {
	apply func(state *State, msg signet.Msg) error
}

var _ signet.Handler = DirectHandler{}

func (h DirectHandler) Check(call *signet.Call) error {
	_, err := h.validate(call)
	return err
}

func (h DirectHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	state, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	if err := h.apply(state, call.Msg); err != nil {
		return nil, err
	}
	state.CleanupProposals()

	post, err := saveState(call.Accounts[stateAccountIdx].ID, state)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h DirectHandler) validate(call *signet.Call) (*State, error) {
	switch msg := call.Msg.(type) {
	case *AddMemberMsg, *RemoveMemberMsg, *ChangeThresholdMsg:
		if err := msg.Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.WithType(errors.ErrType, call.Msg)
	}

	state, err := loadState(call.Account(stateAccountIdx))
	if err != nil {
		return nil, err
	}

	var signers []signet.AccountID
	for _, acc := range call.Accounts[signerAccountIdx:] {
		if acc.IsAuthorized {
			signers = append(signers, acc.ID)
		}
	}
	if got := state.CountValidSigners(signers); got < int(state.Threshold) {
		return nil, errors.Wrapf(ErrThresholdNotMet,
			"need %d member signatures, have %d", state.Threshold, got)
	}
	return state, nil
}

// applyAddMember extends the roster, keeping the invariants intact.
func applyAddMember(state *State, msg signet.Msg) error {
	m := msg.(*AddMemberMsg)
	if state.IsMember(m.NewMember) {
		return errors.Wrapf(ErrDuplicateMember, "%s", m.NewMember)
	}
	if state.MemberCount == maxMembers {
		return errors.Wrap(errors.ErrOverflow, "roster full")
	}
	state.Members = append(state.Members, m.NewMember)
	state.MemberCount++
	return nil
}

// applyRemoveMember shrinks the roster. Votes the removed member already
// cast on live proposals stay counted; pending tallies are not
// re-validated on membership changes.
func applyRemoveMember(state *State, msg signet.Msg) error {
	m := msg.(*RemoveMemberMsg)
	if !state.IsMember(m.Member) {
		return errors.Wrapf(ErrNotMember, "%s", m.Member)
	}
	if int(state.MemberCount)-1 < int(state.Threshold) {
		return errors.Wrapf(ErrInvalidThreshold,
			"removing %s leaves %d members below threshold %d",
			m.Member, state.MemberCount-1, state.Threshold)
	}
	state.Members = removeID(state.Members, m.Member)
	state.MemberCount--
	return nil
}

// applyChangeThreshold replaces the threshold within the allowed range.
func applyChangeThreshold(state *State, msg signet.Msg) error {
	m := msg.(*ChangeThresholdMsg)
	if m.NewThreshold == 0 || m.NewThreshold > state.MemberCount {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d", m.NewThreshold, state.MemberCount)
	}
	state.Threshold = m.NewThreshold
	return nil
}
