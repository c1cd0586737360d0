package multisig

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// The configuration account stores a single borsh-encoded State blob with
// fields in declaration order. An empty blob means the multisig was never
// created.

// MarshalState encodes the configuration for persistence.
func MarshalState(s *State) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := s.MarshalWithEncoder(enc); err != nil {
		return nil, errors.Wrap(err, "encode state")
	}
	return buf.Bytes(), nil
}

// UnmarshalState decodes a persisted configuration. The blob must be
// non-empty; callers decide how to treat uninitialized accounts.
func UnmarshalState(data []byte) (*State, error) {
	dec := bin.NewBorshDecoder(data)
	var s State
	if err := s.UnmarshalWithDecoder(dec); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return &s, nil
}

func (s *State) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(s.Threshold); err != nil {
		return err
	}
	if err := enc.WriteUint8(s.MemberCount); err != nil {
		return err
	}
	if err := writeAccountIDs(enc, s.Members); err != nil {
		return err
	}
	if err := enc.WriteUint64(s.TransactionIndex, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(s.Proposals)), binary.LittleEndian); err != nil {
		return err
	}
	for i := range s.Proposals {
		if err := s.Proposals[i].MarshalWithEncoder(enc); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if s.Threshold, err = dec.ReadUint8(); err != nil {
		return err
	}
	if s.MemberCount, err = dec.ReadUint8(); err != nil {
		return err
	}
	if s.Members, err = readAccountIDs(dec); err != nil {
		return err
	}
	if s.TransactionIndex, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	n, err := readVecLen(dec, minProposalSize)
	if err != nil {
		return err
	}
	if n > 0 {
		s.Proposals = make([]Proposal, n)
		for i := range s.Proposals {
			if err := s.Proposals[i].UnmarshalWithDecoder(dec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Proposal) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint64(p.Index, binary.LittleEndian); err != nil {
		return err
	}
	if err := marshalAction(enc, p.Action); err != nil {
		return err
	}
	if err := enc.WriteBytes(p.Proposer[:], false); err != nil {
		return err
	}
	if err := writeAccountIDs(enc, p.Approved); err != nil {
		return err
	}
	if err := writeAccountIDs(enc, p.Rejected); err != nil {
		return err
	}
	return enc.WriteUint8(uint8(p.Status))
}

func (p *Proposal) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if p.Index, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if p.Action, err = unmarshalAction(dec); err != nil {
		return err
	}
	if p.Proposer, err = readAccountID(dec); err != nil {
		return err
	}
	if p.Approved, err = readAccountIDs(dec); err != nil {
		return err
	}
	if p.Rejected, err = readAccountIDs(dec); err != nil {
		return err
	}
	status, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	p.Status = Status(status)
	return nil
}

func writeAccountIDs(enc *bin.Encoder, ids []signet.AccountID) error {
	if err := enc.WriteUint32(uint32(len(ids)), binary.LittleEndian); err != nil {
		return err
	}
	for _, id := range ids {
		if err := enc.WriteBytes(id[:], false); err != nil {
			return err
		}
	}
	return nil
}

// minProposalSize is the smallest possible encoded Proposal: index, action
// tag plus a one byte payload, proposer, two empty vote vectors and status.
const minProposalSize = 8 + 2 + signet.IDLen + 4 + 4 + 1

// readVecLen reads a borsh vector length prefix and bounds it against the
// bytes left in the payload, so a corrupt or hostile prefix fails as a
// decode error before anything is allocated.
func readVecLen(dec *bin.Decoder, elemSize int) (int, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	if int64(n)*int64(elemSize) > int64(dec.Remaining()) {
		return 0, errors.Wrapf(errors.ErrInput,
			"vector of %d elements does not fit in %d remaining bytes", n, dec.Remaining())
	}
	return int(n), nil
}

func readAccountIDs(dec *bin.Decoder) ([]signet.AccountID, error) {
	n, err := readVecLen(dec, signet.IDLen)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ids := make([]signet.AccountID, n)
	for i := range ids {
		if ids[i], err = readAccountID(dec); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func readAccountID(dec *bin.Decoder) (signet.AccountID, error) {
	var id signet.AccountID
	raw, err := dec.ReadNBytes(signet.IDLen)
	if err != nil {
		return id, err
	}
	copy(id[:], raw)
	return id, nil
}
