package registry

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

const (
	maxNameLen        = 64
	maxVersionLen     = 32
	maxDescriptionLen = 512
	maxTags           = 16
)

// State is the registry singleton: the deploying authority and a counter
// of successful registrations.
type State struct {
	Authority    signet.AccountID
	ProgramCount uint64
}

// Entry describes one registered program: identity, authorship and the
// content id of its interface manifest.
type Entry struct {
	ProgramID    signet.ProgramID
	Name         string
	Version      string
	Author       signet.AccountID
	ManifestCID  string
	Description  string
	RegisteredAt uint64
	Tags         []string
}

func (e *Entry) Validate() error {
	if err := e.ProgramID.Validate(); err != nil {
		return errors.Wrap(err, "program id")
	}
	switch n := len(e.Name); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "name")
	case n > maxNameLen:
		return errors.Wrap(ErrInvalidEntry, "name too long")
	}
	if len(e.Version) > maxVersionLen {
		return errors.Wrap(ErrInvalidEntry, "version too long")
	}
	if len(e.Description) > maxDescriptionLen {
		return errors.Wrap(ErrInvalidEntry, "description too long")
	}
	if len(e.Tags) > maxTags {
		return errors.Wrap(ErrInvalidEntry, "too many tags")
	}
	return errors.Wrap(e.Author.Validate(), "author")
}

func (s *State) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(s.Authority[:], false); err != nil {
		return err
	}
	return enc.WriteUint64(s.ProgramCount, binary.LittleEndian)
}

func (s *State) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	raw, err := dec.ReadNBytes(signet.IDLen)
	if err != nil {
		return err
	}
	copy(s.Authority[:], raw)
	s.ProgramCount, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

func (e *Entry) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(e.ProgramID[:], false); err != nil {
		return err
	}
	if err := enc.WriteString(e.Name); err != nil {
		return err
	}
	if err := enc.WriteString(e.Version); err != nil {
		return err
	}
	if err := enc.WriteBytes(e.Author[:], false); err != nil {
		return err
	}
	if err := enc.WriteString(e.ManifestCID); err != nil {
		return err
	}
	if err := enc.WriteString(e.Description); err != nil {
		return err
	}
	if err := enc.WriteUint64(e.RegisteredAt, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(e.Tags)), binary.LittleEndian); err != nil {
		return err
	}
	for _, tag := range e.Tags {
		if err := enc.WriteString(tag); err != nil {
			return err
		}
	}
	return nil
}

func (e *Entry) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	raw, err := dec.ReadNBytes(signet.IDLen)
	if err != nil {
		return err
	}
	copy(e.ProgramID[:], raw)
	if e.Name, err = dec.ReadString(); err != nil {
		return err
	}
	if e.Version, err = dec.ReadString(); err != nil {
		return err
	}
	raw, err = dec.ReadNBytes(signet.IDLen)
	if err != nil {
		return err
	}
	copy(e.Author[:], raw)
	if e.ManifestCID, err = dec.ReadString(); err != nil {
		return err
	}
	if e.Description, err = dec.ReadString(); err != nil {
		return err
	}
	if e.RegisteredAt, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	e.Tags, err = readStrings(dec)
	return err
}

// MarshalState encodes the registry state for persistence.
func MarshalState(s *State) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "encode registry state")
	}
	return buf.Bytes(), nil
}

// UnmarshalState decodes a persisted registry state.
func UnmarshalState(data []byte) (*State, error) {
	var s State
	if err := s.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return &s, nil
}

// MarshalEntry encodes an entry for persistence.
func MarshalEntry(e *Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "encode entry")
	}
	return buf.Bytes(), nil
}

// UnmarshalEntry decodes a persisted entry.
func UnmarshalEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := e.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return &e, nil
}
