package multisig

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// Routing paths, one per instruction.
const (
	PathCreateMultisig  = "multisig/create"
	PathPropose         = "multisig/propose"
	PathApprove         = "multisig/approve"
	PathReject          = "multisig/reject"
	PathExecute         = "multisig/execute"
	PathAddMember       = "multisig/add_member"
	PathRemoveMember    = "multisig/remove_member"
	PathChangeThreshold = "multisig/change_threshold"
)

// Wire instruction tags (borsh enum). Never renumber.
const (
	msgTagCreateMultisig uint8 = iota
	msgTagPropose
	msgTagApprove
	msgTagReject
	msgTagExecute
	msgTagAddMember
	msgTagRemoveMember
	msgTagChangeThreshold
)

// To avoid burning CPU on roster scans, this is the maximum number of
// members a single multisig can have. uint8 member count caps it anyway;
// this keeps the two limits in one place.
const maxMembers = 255

// CreateMultisigMsg initializes a new M-of-N configuration.
//
// Accounts: [state (PDA, uninitialized), member accounts...]
type CreateMultisigMsg struct {
	Threshold uint8
	Members   []signet.AccountID
}

var _ signet.Msg = (*CreateMultisigMsg)(nil)

func (CreateMultisigMsg) Path() string { return PathCreateMultisig }

func (m *CreateMultisigMsg) Validate() error {
	switch n := len(m.Members); {
	case n == 0:
		return errors.Wrap(errors.ErrMsg, "no members")
	case n > maxMembers:
		return errors.Wrap(errors.ErrMsg, "too many members")
	}
	if m.Threshold == 0 || int(m.Threshold) > len(m.Members) {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d", m.Threshold, len(m.Members))
	}
	for i, member := range m.Members {
		if err := member.Validate(); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
		if containsID(m.Members[:i], member) {
			return errors.Wrapf(ErrDuplicateMember, "%s", member)
		}
	}
	return nil
}

// ProposeMsg creates a new Active proposal, auto-approved by the proposer.
//
// Accounts: [state, proposer (signer)]
type ProposeMsg struct {
	Action Action
}

var _ signet.Msg = (*ProposeMsg)(nil)

func (ProposeMsg) Path() string { return PathPropose }

func (m *ProposeMsg) Validate() error {
	if m.Action == nil {
		return errors.Wrap(errors.ErrEmpty, "action")
	}
	return m.Action.Validate()
}

// ApproveMsg records an approval vote.
//
// Accounts: [state, approver (signer)]
type ApproveMsg struct {
	ProposalIndex uint64
}

var _ signet.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string { return PathApprove }

func (m *ApproveMsg) Validate() error {
	if m.ProposalIndex == 0 {
		return errors.Wrap(errors.ErrMsg, "proposal index must be positive")
	}
	return nil
}

// RejectMsg records a rejection vote.
//
// Accounts: [state, rejector (signer)]
type RejectMsg struct {
	ProposalIndex uint64
}

var _ signet.Msg = (*RejectMsg)(nil)

func (RejectMsg) Path() string { return PathReject }

func (m *RejectMsg) Validate() error {
	if m.ProposalIndex == 0 {
		return errors.Wrap(errors.ErrMsg, "proposal index must be positive")
	}
	return nil
}

// ExecuteMsg resolves a proposal that reached quorum.
//
// Accounts: [state, executor (signer), target accounts...] where the
// target account count must match what the proposal's action declares.
type ExecuteMsg struct {
	ProposalIndex uint64
}

var _ signet.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string { return PathExecute }

func (m *ExecuteMsg) Validate() error {
	if m.ProposalIndex == 0 {
		return errors.Wrap(errors.ErrMsg, "proposal index must be positive")
	}
	return nil
}

// AddMemberMsg is the direct roster extension, authorized by
// threshold-many members signing the same transaction instead of going
// through a proposal.
//
// Accounts: [state, signer accounts...]
type AddMemberMsg struct {
	NewMember signet.AccountID
}

var _ signet.Msg = (*AddMemberMsg)(nil)

func (AddMemberMsg) Path() string { return PathAddMember }

func (m *AddMemberMsg) Validate() error {
	return errors.Wrap(m.NewMember.Validate(), "new member")
}

// RemoveMemberMsg is the direct counterpart of AddMemberMsg.
//
// Accounts: [state, signer accounts...]
type RemoveMemberMsg struct {
	Member signet.AccountID
}

var _ signet.Msg = (*RemoveMemberMsg)(nil)

func (RemoveMemberMsg) Path() string { return PathRemoveMember }

func (m *RemoveMemberMsg) Validate() error {
	return errors.Wrap(m.Member.Validate(), "member")
}

// ChangeThresholdMsg directly replaces the threshold, authorized the same
// way as AddMemberMsg.
//
// Accounts: [state, signer accounts...]
type ChangeThresholdMsg struct {
	NewThreshold uint8
}

var _ signet.Msg = (*ChangeThresholdMsg)(nil)

func (ChangeThresholdMsg) Path() string { return PathChangeThreshold }

func (m *ChangeThresholdMsg) Validate() error {
	if m.NewThreshold == 0 {
		return errors.Wrap(ErrInvalidThreshold, "zero")
	}
	return nil
}

// EncodeInstruction serializes a multisig message into its wire form: a
// one byte enum tag followed by the borsh payload.
func EncodeInstruction(msg signet.Msg) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	var err error
	switch m := msg.(type) {
	case *CreateMultisigMsg:
		if err = enc.WriteUint8(msgTagCreateMultisig); err == nil {
			if err = enc.WriteUint8(m.Threshold); err == nil {
				err = writeAccountIDs(enc, m.Members)
			}
		}
	case *ProposeMsg:
		if err = enc.WriteUint8(msgTagPropose); err == nil {
			err = marshalAction(enc, m.Action)
		}
	case *ApproveMsg:
		if err = enc.WriteUint8(msgTagApprove); err == nil {
			err = enc.WriteUint64(m.ProposalIndex, binary.LittleEndian)
		}
	case *RejectMsg:
		if err = enc.WriteUint8(msgTagReject); err == nil {
			err = enc.WriteUint64(m.ProposalIndex, binary.LittleEndian)
		}
	case *ExecuteMsg:
		if err = enc.WriteUint8(msgTagExecute); err == nil {
			err = enc.WriteUint64(m.ProposalIndex, binary.LittleEndian)
		}
	case *AddMemberMsg:
		if err = enc.WriteUint8(msgTagAddMember); err == nil {
			err = enc.WriteBytes(m.NewMember[:], false)
		}
	case *RemoveMemberMsg:
		if err = enc.WriteUint8(msgTagRemoveMember); err == nil {
			err = enc.WriteBytes(m.Member[:], false)
		}
	case *ChangeThresholdMsg:
		if err = enc.WriteUint8(msgTagChangeThreshold); err == nil {
			err = enc.WriteUint8(m.NewThreshold)
		}
	default:
		return nil, errors.WithType(errors.ErrType, msg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "encode instruction")
	}
	return buf.Bytes(), nil
}

// DecodeInstruction parses wire bytes into the corresponding message. It
// does not run Validate; handlers do.
func DecodeInstruction(data []byte) (signet.Msg, error) {
	dec := bin.NewBorshDecoder(data)
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "missing instruction tag")
	}

	switch tag {
	case msgTagCreateMultisig:
		var m CreateMultisigMsg
		if m.Threshold, err = dec.ReadUint8(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.Members, err = readAccountIDs(dec); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagPropose:
		var m ProposeMsg
		if m.Action, err = unmarshalAction(dec); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagApprove:
		var m ApproveMsg
		if m.ProposalIndex, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagReject:
		var m RejectMsg
		if m.ProposalIndex, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagExecute:
		var m ExecuteMsg
		if m.ProposalIndex, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagAddMember:
		var m AddMemberMsg
		if m.NewMember, err = readAccountID(dec); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagRemoveMember:
		var m RemoveMemberMsg
		if m.Member, err = readAccountID(dec); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	case msgTagChangeThreshold:
		var m ChangeThresholdMsg
		if m.NewThreshold, err = dec.ReadUint8(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil

	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown instruction tag %d", tag)
	}
}
