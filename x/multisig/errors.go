package multisig

import "github.com/signet-one/signet/errors"

// Multisig takes the 1100-1199 error code range.
var (
	// ErrInvalidThreshold is returned when a threshold is zero or cannot
	// be satisfied by the member roster it applies to.
	ErrInvalidThreshold = errors.Register(1100, "invalid threshold")

	// ErrDuplicateMember is returned when a member roster would contain
	// the same id twice.
	ErrDuplicateMember = errors.Register(1101, "duplicate member")

	// ErrNotMember is returned when the acting account is not part of the
	// member roster.
	ErrNotMember = errors.Register(1102, "not a member")

	// ErrNotSigner is returned when the acting account did not sign the
	// transaction.
	ErrNotSigner = errors.Register(1103, "not a signer")

	// ErrProposalNotFound is returned when no live proposal carries the
	// requested index.
	ErrProposalNotFound = errors.Register(1104, "proposal not found")

	// ErrProposalNotActive is returned when a proposal was already
	// resolved and can no longer be voted on or executed.
	ErrProposalNotActive = errors.Register(1105, "proposal not active")

	// ErrThresholdNotMet is returned when execution is attempted before a
	// quorum of approvals was collected.
	ErrThresholdNotMet = errors.Register(1106, "threshold not met")

	// ErrAccountCount is returned when the supplied target accounts do
	// not match the count the proposal declared.
	ErrAccountCount = errors.Register(1107, "account count mismatch")
)
