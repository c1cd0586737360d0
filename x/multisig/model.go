package multisig

import (
	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// Status is the lifecycle state of a proposal.
type Status uint8

const (
	// StatusActive means the proposal is accepting votes.
	StatusActive Status = iota
	// StatusExecuted means the proposal reached quorum and was executed.
	StatusExecuted
	// StatusRejected means the proposal can never reach quorum.
	StatusRejected
	// StatusCancelled is a defined terminal state with no instruction
	// transitioning into it yet. Cleanup treats it as resolved.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExecuted:
		return "Executed"
	case StatusRejected:
		return "Rejected"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Proposal is one governed action together with its vote tally. The
// Approved and Rejected sets are kept disjoint: a member's latest vote
// overwrites a prior opposite vote.
type Proposal struct {
	Index    uint64
	Action   Action
	Proposer signet.AccountID
	Approved []signet.AccountID
	Rejected []signet.AccountID
	Status   Status
}

// NewProposal returns an Active proposal with the proposer auto-approving.
func NewProposal(index uint64, action Action, proposer signet.AccountID) Proposal {
	return Proposal{
		Index:    index,
		Action:   action,
		Proposer: proposer,
		Approved: []signet.AccountID{proposer},
		Rejected: nil,
		Status:   StatusActive,
	}
}

// Approve records an approval. Returns true if this was a new approval;
// re-approving is a no-op, not an error. A prior rejection by the same
// member is withdrawn.
func (p *Proposal) Approve(member signet.AccountID) bool {
	if containsID(p.Approved, member) {
		return false
	}
	p.Rejected = removeID(p.Rejected, member)
	p.Approved = append(p.Approved, member)
	return true
}

// Reject records a rejection, symmetric to Approve.
func (p *Proposal) Reject(member signet.AccountID) bool {
	if containsID(p.Rejected, member) {
		return false
	}
	p.Approved = removeID(p.Approved, member)
	p.Rejected = append(p.Rejected, member)
	return true
}

// HasThreshold is true once approvals meet or exceed the threshold.
func (p *Proposal) HasThreshold(threshold uint8) bool {
	return len(p.Approved) >= int(threshold)
}

// IsDead is true when the proposal can mathematically never reach quorum:
// too few members remain that have not rejected it. Members that have not
// voted still count as remaining.
func (p *Proposal) IsDead(threshold, memberCount uint8) bool {
	remaining := int(memberCount) - len(p.Rejected)
	return remaining < int(threshold)
}

// Validate checks the tally invariants that must hold for any persisted
// proposal.
func (p *Proposal) Validate() error {
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if p.Action == nil {
		return errors.Wrap(errors.ErrEmpty, "action")
	}
	if err := p.Action.Validate(); err != nil {
		return errors.Wrap(err, "action")
	}
	for _, a := range p.Approved {
		if containsID(p.Rejected, a) {
			return errors.Wrapf(errors.ErrState, "member %s both approved and rejected", a)
		}
	}
	return nil
}

// State is the persistent record of one governance instance: threshold,
// member roster, the proposal index counter and the live proposal set.
type State struct {
	Threshold uint8
	// MemberCount duplicates len(Members) for compact serialization and
	// must always equal it.
	MemberCount uint8
	Members     []signet.AccountID
	// TransactionIndex is the source of proposal indices. It only ever
	// grows, so indices are never reused even after proposals are pruned.
	TransactionIndex uint64
	// Proposals is the live working set, not a history. Resolved entries
	// are pruned, see CleanupProposals.
	Proposals []Proposal
}

// NewState validates the threshold against the roster and returns a fresh
// configuration with an empty proposal set.
func NewState(threshold uint8, members []signet.AccountID) (*State, error) {
	if threshold == 0 || int(threshold) > len(members) {
		return nil, errors.Wrapf(ErrInvalidThreshold, "%d of %d", threshold, len(members))
	}
	for i, m := range members {
		if err := m.Validate(); err != nil {
			return nil, errors.Wrapf(err, "member %d", i)
		}
		if containsID(members[:i], m) {
			return nil, errors.Wrapf(ErrDuplicateMember, "%s", m)
		}
	}
	return &State{
		Threshold:        threshold,
		MemberCount:      uint8(len(members)),
		Members:          members,
		TransactionIndex: 0,
	}, nil
}

// Validate checks the configuration invariants.
func (s *State) Validate() error {
	if s.Threshold == 0 || s.Threshold > s.MemberCount {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d", s.Threshold, s.MemberCount)
	}
	if int(s.MemberCount) != len(s.Members) {
		return errors.Wrapf(errors.ErrModel, "member count %d does not match roster size %d",
			s.MemberCount, len(s.Members))
	}
	for i, m := range s.Members {
		if containsID(s.Members[:i], m) {
			return errors.Wrapf(ErrDuplicateMember, "%s", m)
		}
	}
	for i := range s.Proposals {
		if err := s.Proposals[i].Validate(); err != nil {
			return errors.Wrapf(err, "proposal %d", s.Proposals[i].Index)
		}
	}
	return nil
}

// IsMember checks the roster for the given id.
func (s *State) IsMember(id signet.AccountID) bool {
	return containsID(s.Members, id)
}

// CountValidSigners counts how many of the candidate signers are current
// members. Used by instructions that require simultaneous multi-party
// authorization outside the proposal flow.
func (s *State) CountValidSigners(signers []signet.AccountID) int {
	cnt := 0
	for _, id := range signers {
		if s.IsMember(id) {
			cnt++
		}
	}
	return cnt
}

// Proposal returns the live proposal with the given index, or nil.
func (s *State) Proposal(index uint64) *Proposal {
	for i := range s.Proposals {
		if s.Proposals[i].Index == index {
			return &s.Proposals[i]
		}
	}
	return nil
}

// CreateProposal assigns the next index, appends an Active proposal with
// the proposer auto-approving, and returns the new index. Indices are
// dense and strictly increasing for the lifetime of the configuration.
func (s *State) CreateProposal(action Action, proposer signet.AccountID) uint64 {
	s.TransactionIndex++
	s.Proposals = append(s.Proposals, NewProposal(s.TransactionIndex, action, proposer))
	return s.TransactionIndex
}

// CleanupProposals prunes every resolved proposal, keeping the live set
// bounded. TransactionIndex is untouched so pruned indices are never
// reassigned.
func (s *State) CleanupProposals() {
	live := s.Proposals[:0]
	for _, p := range s.Proposals {
		if p.Status == StatusActive {
			live = append(live, p)
		}
	}
	s.Proposals = live
}

func containsID(ids []signet.AccountID, id signet.AccountID) bool {
	for _, x := range ids {
		if x.Equals(id) {
			return true
		}
	}
	return false
}

func removeID(ids []signet.AccountID, id signet.AccountID) []signet.AccountID {
	for i, x := range ids {
		if x.Equals(id) {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
