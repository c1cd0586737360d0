package multisig

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// Borsh enum tags for Action. These are wire format and must never be
// renumbered.
const (
	actionTagTransfer uint8 = iota
	actionTagAddMember
	actionTagRemoveMember
	actionTagChangeThreshold
	actionTagCall
)

// Action is the governed operation a proposal carries. It is a closed sum:
// only the variants in this file implement it.
type Action interface {
	Validate() error

	// TargetAccountCount is the number of target accounts the Execute
	// instruction must supply after the state and executor accounts.
	TargetAccountCount() int

	marshal(enc *bin.Encoder) error
	tag() uint8
}

// TransferAction moves funds out of the governed treasury vault. Execution
// emits a delegated call to the treasury program; the multisig never
// touches balances itself.
type TransferAction struct {
	Recipient signet.AccountID
	Amount    bin.Uint128
}

func (a *TransferAction) Validate() error {
	if err := a.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if a.Amount.Lo == 0 && a.Amount.Hi == 0 {
		return errors.Wrap(errors.ErrAmount, "transfer of zero")
	}
	return nil
}

// TargetAccountCount covers [source vault, recipient vault, vault owner].
func (a *TransferAction) TargetAccountCount() int { return 3 }

func (a *TransferAction) tag() uint8 { return actionTagTransfer }

func (a *TransferAction) marshal(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.Recipient[:], false); err != nil {
		return err
	}
	return enc.WriteUint128(a.Amount, binary.LittleEndian)
}

// AddMemberAction extends the roster by one member.
type AddMemberAction struct {
	NewMember signet.AccountID
}

func (a *AddMemberAction) Validate() error {
	return errors.Wrap(a.NewMember.Validate(), "new member")
}

func (a *AddMemberAction) TargetAccountCount() int { return 0 }

func (a *AddMemberAction) tag() uint8 { return actionTagAddMember }

func (a *AddMemberAction) marshal(enc *bin.Encoder) error {
	return enc.WriteBytes(a.NewMember[:], false)
}

// RemoveMemberAction removes one member from the roster.
type RemoveMemberAction struct {
	Member signet.AccountID
}

func (a *RemoveMemberAction) Validate() error {
	return errors.Wrap(a.Member.Validate(), "member")
}

func (a *RemoveMemberAction) TargetAccountCount() int { return 0 }

func (a *RemoveMemberAction) tag() uint8 { return actionTagRemoveMember }

func (a *RemoveMemberAction) marshal(enc *bin.Encoder) error {
	return enc.WriteBytes(a.Member[:], false)
}

// ChangeThresholdAction replaces the approval threshold.
type ChangeThresholdAction struct {
	NewThreshold uint8
}

func (a *ChangeThresholdAction) Validate() error {
	if a.NewThreshold == 0 {
		return errors.Wrap(ErrInvalidThreshold, "zero")
	}
	return nil
}

func (a *ChangeThresholdAction) TargetAccountCount() int { return 0 }

func (a *ChangeThresholdAction) tag() uint8 { return actionTagChangeThreshold }

func (a *ChangeThresholdAction) marshal(enc *bin.Encoder) error {
	return enc.WriteUint8(a.NewThreshold)
}

// CallAction is an opaque delegated call: a quorum of members approves the
// exact (program, payload, account shape) triple and execution relays it
// untouched. AuthorizedIndices name the positions in the target account
// list that the multisig vouches for as if they had signed; Seeds prove to
// the host that those accounts are this program's PDAs.
type CallAction struct {
	ProgramID         signet.ProgramID
	Data              []byte
	AccountCount      uint8
	Seeds             []signet.PdaSeed
	AuthorizedIndices []uint8
}

func (a *CallAction) Validate() error {
	if err := a.ProgramID.Validate(); err != nil {
		return errors.Wrap(err, "target program")
	}
	for _, idx := range a.AuthorizedIndices {
		if idx >= a.AccountCount {
			return errors.Wrapf(errors.ErrInput,
				"authorized index %d out of range for %d accounts", idx, a.AccountCount)
		}
	}
	return nil
}

func (a *CallAction) TargetAccountCount() int { return int(a.AccountCount) }

func (a *CallAction) tag() uint8 { return actionTagCall }

func (a *CallAction) marshal(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.ProgramID[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Data, true); err != nil {
		return err
	}
	if err := enc.WriteUint8(a.AccountCount); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(a.Seeds)), binary.LittleEndian); err != nil {
		return err
	}
	for _, s := range a.Seeds {
		if err := enc.WriteBytes(s[:], false); err != nil {
			return err
		}
	}
	if err := enc.WriteUint32(uint32(len(a.AuthorizedIndices)), binary.LittleEndian); err != nil {
		return err
	}
	for _, idx := range a.AuthorizedIndices {
		if err := enc.WriteUint8(idx); err != nil {
			return err
		}
	}
	return nil
}

func marshalAction(enc *bin.Encoder, a Action) error {
	if err := enc.WriteUint8(a.tag()); err != nil {
		return err
	}
	return a.marshal(enc)
}

func unmarshalAction(dec *bin.Decoder) (Action, error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case actionTagTransfer:
		var a TransferAction
		if a.Recipient, err = readAccountID(dec); err != nil {
			return nil, err
		}
		if a.Amount, err = dec.ReadUint128(binary.LittleEndian); err != nil {
			return nil, err
		}
		return &a, nil

	case actionTagAddMember:
		var a AddMemberAction
		if a.NewMember, err = readAccountID(dec); err != nil {
			return nil, err
		}
		return &a, nil

	case actionTagRemoveMember:
		var a RemoveMemberAction
		if a.Member, err = readAccountID(dec); err != nil {
			return nil, err
		}
		return &a, nil

	case actionTagChangeThreshold:
		var a ChangeThresholdAction
		if a.NewThreshold, err = dec.ReadUint8(); err != nil {
			return nil, err
		}
		return &a, nil

	case actionTagCall:
		var a CallAction
		raw, err := dec.ReadNBytes(signet.IDLen)
		if err != nil {
			return nil, err
		}
		copy(a.ProgramID[:], raw)
		n, err := dec.ReadUint32(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		if a.Data, err = dec.ReadNBytes(int(n)); err != nil {
			return nil, err
		}
		if a.AccountCount, err = dec.ReadUint8(); err != nil {
			return nil, err
		}
		seeds, err := readVecLen(dec, signet.IDLen)
		if err != nil {
			return nil, err
		}
		if seeds > 0 {
			a.Seeds = make([]signet.PdaSeed, seeds)
			for i := range a.Seeds {
				raw, err := dec.ReadNBytes(signet.IDLen)
				if err != nil {
					return nil, err
				}
				copy(a.Seeds[i][:], raw)
			}
		}
		indices, err := readVecLen(dec, 1)
		if err != nil {
			return nil, err
		}
		if indices > 0 {
			a.AuthorizedIndices = make([]uint8, indices)
			for i := range a.AuthorizedIndices {
				if a.AuthorizedIndices[i], err = dec.ReadUint8(); err != nil {
					return nil, err
				}
			}
		}
		return &a, nil

	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown action tag %d", tag)
	}
}
