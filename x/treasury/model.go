package treasury

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// State is the singleton treasury record: who initialized it and how many
// vaults were created under it.
type State struct {
	Initialized bool
	Authority   signet.AccountID
	VaultCount  uint64
}

func (s *State) Validate() error {
	if !s.Initialized {
		return errors.Wrap(ErrNotInitialized, "treasury state")
	}
	return errors.Wrap(s.Authority.Validate(), "authority")
}

// Vault is one balance-bearing record. Owner may be a user account or a
// program PDA (a multisig state account for governed vaults); spends
// require the owner account to be authorized on the instruction.
type Vault struct {
	Initialized bool
	Owner       signet.AccountID
	Balance     uint64
}

func (v *Vault) Validate() error {
	if !v.Initialized {
		return errors.Wrap(ErrNotInitialized, "vault")
	}
	return errors.Wrap(v.Owner.Validate(), "owner")
}

func (s *State) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBool(s.Initialized); err != nil {
		return err
	}
	if err := enc.WriteBytes(s.Authority[:], false); err != nil {
		return err
	}
	return enc.WriteUint64(s.VaultCount, binary.LittleEndian)
}

func (s *State) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if s.Initialized, err = dec.ReadBool(); err != nil {
		return err
	}
	raw, err := dec.ReadNBytes(signet.IDLen)
	if err != nil {
		return err
	}
	copy(s.Authority[:], raw)
	s.VaultCount, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

func (v *Vault) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBool(v.Initialized); err != nil {
		return err
	}
	if err := enc.WriteBytes(v.Owner[:], false); err != nil {
		return err
	}
	return enc.WriteUint64(v.Balance, binary.LittleEndian)
}

func (v *Vault) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if v.Initialized, err = dec.ReadBool(); err != nil {
		return err
	}
	raw, err := dec.ReadNBytes(signet.IDLen)
	if err != nil {
		return err
	}
	copy(v.Owner[:], raw)
	v.Balance, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

// MarshalState encodes the treasury state for persistence.
func MarshalState(s *State) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "encode treasury state")
	}
	return buf.Bytes(), nil
}

// UnmarshalState decodes a persisted treasury state.
func UnmarshalState(data []byte) (*State, error) {
	var s State
	if err := s.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return &s, nil
}

// MarshalVault encodes a vault for persistence.
func MarshalVault(v *Vault) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "encode vault")
	}
	return buf.Bytes(), nil
}

// UnmarshalVault decodes a persisted vault.
func UnmarshalVault(data []byte) (*Vault, error) {
	var v Vault
	if err := v.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return &v, nil
}
