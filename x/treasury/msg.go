package treasury

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// Routing paths.
const (
	PathInit        = "treasury/init"
	PathCreateVault = "treasury/create_vault"
	PathDeposit     = "treasury/deposit"
	PathWithdraw    = "treasury/withdraw"
	PathTransfer    = "treasury/transfer"
)

// Wire instruction tags.
const (
	msgTagInit uint8 = iota
	msgTagCreateVault
	msgTagDeposit
	msgTagWithdraw
	msgTagTransfer
)

// InitMsg initializes the treasury singleton.
//
// Accounts: [state (uninitialized), authority (signer)]
type InitMsg struct{}

var _ signet.Msg = (*InitMsg)(nil)

func (InitMsg) Path() string { return PathInit }

func (InitMsg) Validate() error { return nil }

// CreateVaultMsg creates an empty vault owned by Owner. The owner does not
// have to sign; governed vaults name a multisig state PDA here.
//
// Accounts: [state, vault (uninitialized), creator (signer)]
type CreateVaultMsg struct {
	Owner signet.AccountID
}

var _ signet.Msg = (*CreateVaultMsg)(nil)

func (CreateVaultMsg) Path() string { return PathCreateVault }

func (m *CreateVaultMsg) Validate() error {
	return errors.Wrap(m.Owner.Validate(), "owner")
}

// DepositMsg credits a vault.
//
// Accounts: [vault, depositor (signer)]
type DepositMsg struct {
	Amount uint64
}

var _ signet.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string { return PathDeposit }

func (m *DepositMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "deposit of zero")
	}
	return nil
}

// WithdrawMsg debits a vault; the funds leave the ledger.
//
// Accounts: [vault, owner (authorized)]
type WithdrawMsg struct {
	Amount uint64
}

var _ signet.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string { return PathWithdraw }

func (m *WithdrawMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "withdrawal of zero")
	}
	return nil
}

// TransferMsg moves funds between two vaults. The source vault's owner
// account must be authorized: either it signed the transaction or a
// program (the multisig) pre-authorized it in a chained call.
//
// Accounts: [source vault, recipient vault, owner (authorized)]
type TransferMsg struct {
	Amount uint64
}

var _ signet.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string { return PathTransfer }

func (m *TransferMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "transfer of zero")
	}
	return nil
}

// EncodeInstruction serializes a treasury message into its wire form.
func EncodeInstruction(msg signet.Msg) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	var err error
	switch m := msg.(type) {
	case *InitMsg:
		err = enc.WriteUint8(msgTagInit)
	case *CreateVaultMsg:
		if err = enc.WriteUint8(msgTagCreateVault); err == nil {
			err = enc.WriteBytes(m.Owner[:], false)
		}
	case *DepositMsg:
		if err = enc.WriteUint8(msgTagDeposit); err == nil {
			err = enc.WriteUint64(m.Amount, binary.LittleEndian)
		}
	case *WithdrawMsg:
		if err = enc.WriteUint8(msgTagWithdraw); err == nil {
			err = enc.WriteUint64(m.Amount, binary.LittleEndian)
		}
	case *TransferMsg:
		if err = enc.WriteUint8(msgTagTransfer); err == nil {
			err = enc.WriteUint64(m.Amount, binary.LittleEndian)
		}
	default:
		return nil, errors.WithType(errors.ErrType, msg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "encode instruction")
	}
	return buf.Bytes(), nil
}

// DecodeInstruction parses wire bytes into the corresponding message.
func DecodeInstruction(data []byte) (signet.Msg, error) {
	dec := bin.NewBorshDecoder(data)
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "missing instruction tag")
	}

	switch tag {
	case msgTagInit:
		return &InitMsg{}, nil
	case msgTagCreateVault:
		var m CreateVaultMsg
		raw, err := dec.ReadNBytes(signet.IDLen)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		copy(m.Owner[:], raw)
		return &m, nil
	case msgTagDeposit:
		var m DepositMsg
		if m.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil
	case msgTagWithdraw:
		var m WithdrawMsg
		if m.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil
	case msgTagTransfer:
		var m TransferMsg
		if m.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown instruction tag %d", tag)
	}
}
