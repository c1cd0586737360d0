package registry

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// Routing paths.
const (
	PathRegister = "registry/register"
	PathUpdate   = "registry/update"
)

// Wire instruction tags.
const (
	msgTagRegister uint8 = iota
	msgTagUpdate
)

// RegisterMsg publishes a new entry for ProgramID. The program id must not
// already be registered.
//
// Accounts: [registry state, entry (uninitialized), author (signer)]
type RegisterMsg struct {
	ProgramID   signet.ProgramID
	Name        string
	Version     string
	ManifestCID string
	Description string
	Tags        []string
}

var _ signet.Msg = (*RegisterMsg)(nil)

func (RegisterMsg) Path() string { return PathRegister }

func (m *RegisterMsg) Validate() error {
	if err := m.ProgramID.Validate(); err != nil {
		return errors.Wrap(err, "program id")
	}
	switch n := len(m.Name); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "name")
	case n > maxNameLen:
		return errors.Wrap(ErrInvalidEntry, "name too long")
	}
	return validateMutable(m.Version, m.Description, m.Tags)
}

func validateMutable(version, description string, tags []string) error {
	if len(version) > maxVersionLen {
		return errors.Wrap(ErrInvalidEntry, "version too long")
	}
	if len(description) > maxDescriptionLen {
		return errors.Wrap(ErrInvalidEntry, "description too long")
	}
	if len(tags) > maxTags {
		return errors.Wrap(ErrInvalidEntry, "too many tags")
	}
	return nil
}

// UpdateMsg replaces the mutable fields of an existing entry. Only the
// original author may update, and the program id never changes.
//
// Accounts: [entry, author (signer)]
type UpdateMsg struct {
	Version     string
	ManifestCID string
	Description string
	Tags        []string
}

var _ signet.Msg = (*UpdateMsg)(nil)

func (UpdateMsg) Path() string { return PathUpdate }

func (m *UpdateMsg) Validate() error {
	return validateMutable(m.Version, m.Description, m.Tags)
}

func writeStrings(enc *bin.Encoder, ss []string) error {
	if err := enc.WriteUint32(uint32(len(ss)), binary.LittleEndian); err != nil {
		return err
	}
	for _, s := range ss {
		if err := enc.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(dec *bin.Decoder) ([]string, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	// Every encoded string costs at least its own u32 length prefix, which
	// bounds a hostile count before the allocation below.
	if int64(n)*4 > int64(dec.Remaining()) {
		return nil, errors.Wrapf(errors.ErrInput,
			"vector of %d strings does not fit in %d remaining bytes", n, dec.Remaining())
	}
	if n == 0 {
		return nil, nil
	}
	ss := make([]string, n)
	for i := range ss {
		if ss[i], err = dec.ReadString(); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

// EncodeInstruction serializes a registry message into its wire form.
func EncodeInstruction(msg signet.Msg) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	var err error
	switch m := msg.(type) {
	case *RegisterMsg:
		if err = enc.WriteUint8(msgTagRegister); err != nil {
			break
		}
		if err = enc.WriteBytes(m.ProgramID[:], false); err != nil {
			break
		}
		if err = enc.WriteString(m.Name); err != nil {
			break
		}
		if err = enc.WriteString(m.Version); err != nil {
			break
		}
		if err = enc.WriteString(m.ManifestCID); err != nil {
			break
		}
		if err = enc.WriteString(m.Description); err != nil {
			break
		}
		err = writeStrings(enc, m.Tags)
	case *UpdateMsg:
		if err = enc.WriteUint8(msgTagUpdate); err != nil {
			break
		}
		if err = enc.WriteString(m.Version); err != nil {
			break
		}
		if err = enc.WriteString(m.ManifestCID); err != nil {
			break
		}
		if err = enc.WriteString(m.Description); err != nil {
			break
		}
		err = writeStrings(enc, m.Tags)
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
	case msgTagRegister:
		var m RegisterMsg
		raw, err := dec.ReadNBytes(signet.IDLen)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		copy(m.ProgramID[:], raw)
		if m.Name, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.Version, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.ManifestCID, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.Description, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.Tags, err = readStrings(dec); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil
	case msgTagUpdate:
		var m UpdateMsg
		if m.Version, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.ManifestCID, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.Description, err = dec.ReadString(); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if m.Tags, err = readStrings(dec); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		return &m, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown instruction tag %d", tag)
	}
}
