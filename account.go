package signet

import (
	"bytes"
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"github.com/signet-one/signet/errors"
)

// IDLen is the length of account and program identifiers. It must not
// change during the lifetime of a ledger.
const IDLen = 32

// AccountID is an opaque 32-byte identifier of a ledger account. For user
// accounts it is derived from a public key, for program-owned accounts it
// is a PDA. The core never inspects its structure.
type AccountID [IDLen]byte

// NewAccountID copies raw into an AccountID. Returns an error if raw is
// not exactly IDLen bytes.
func NewAccountID(raw []byte) (AccountID, error) {
	var id AccountID
	if len(raw) != IDLen {
		return id, errors.Wrapf(errors.ErrInput, "account id must be %d bytes, got %d", IDLen, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// AccountIDFromString parses a base58 encoded account id.
func AccountIDFromString(s string) (AccountID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return AccountID{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return NewAccountID(raw)
}

// Equals checks if two account ids are the same.
func (a AccountID) Equals(b AccountID) bool {
	return a == b
}

// String returns the base58 representation.
func (a AccountID) String() string {
	return base58.Encode(a[:])
}

// Validate returns an error for the zero id, which is never a valid
// participant.
func (a AccountID) Validate() error {
	if a == (AccountID{}) {
		return errors.Wrap(errors.ErrEmpty, "account id")
	}
	return nil
}

// ProgramID identifies a deployed program. Same shape as an AccountID but
// kept as a separate type so the two cannot be mixed up in signatures.
type ProgramID [IDLen]byte

func (p ProgramID) String() string {
	return base58.Encode(p[:])
}

func (p ProgramID) Validate() error {
	if p == (ProgramID{}) {
		return errors.Wrap(errors.ErrEmpty, "program id")
	}
	return nil
}

// PdaSeed is the 32-byte seed a program combines with its own id to derive
// a program-owned account address.
type PdaSeed [IDLen]byte

// SeedFromTag builds a seed from a short ASCII tag, zero padded to the
// full seed width. Panics if the tag does not fit; seeds are compile-time
// constants so this is a programming error.
func SeedFromTag(tag string) PdaSeed {
	var seed PdaSeed
	if len(tag) > len(seed) {
		panic("pda seed tag too long: " + tag)
	}
	copy(seed[:], tag)
	return seed
}

// DerivePDA computes the well-known address of a program-owned account.
//
// The production host derives these addresses inside its own runtime; this
// implementation only has to be a stable, collision-resistant function of
// (program, seed) so that programs and the simulator agree on locations.
func DerivePDA(program ProgramID, seed PdaSeed) AccountID {
	h := sha256.New()
	h.Write(program[:])
	h.Write(seed[:])
	var id AccountID
	copy(id[:], h.Sum(nil))
	return id
}

// Account is one ledger record: an address and an opaque data blob owned
// by whatever program the host routed it to. Empty data means the account
// was never written.
type Account struct {
	ID   AccountID
	Data []byte
}

// Copy returns a deep copy so handlers can build post states without
// aliasing the snapshot they were given.
func (a Account) Copy() Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return Account{ID: a.ID, Data: data}
}

// IsEmpty is true when the account has never been written.
func (a Account) IsEmpty() bool {
	return len(a.Data) == 0
}

// AccountWithMetadata is an account snapshot as delivered with an
// instruction. IsAuthorized is the host's statement that a valid signature
// for this account accompanies the transaction (or, inside a chained call,
// that the calling program pre-authorized it). Programs trust this flag and
// never see signatures.
type AccountWithMetadata struct {
	Account
	IsAuthorized bool
}

// CopyMeta is Copy for the metadata wrapper.
func (a AccountWithMetadata) CopyMeta() AccountWithMetadata {
	return AccountWithMetadata{Account: a.Account.Copy(), IsAuthorized: a.IsAuthorized}
}

// AccountIDsEqual reports whether two id slices hold the same ids in the
// same order.
func AccountIDsEqual(a, b []AccountID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i][:], b[i][:]) {
			return false
		}
	}
	return true
}
