package treasury

import "github.com/signet-one/signet/errors"

// Treasury takes the 1200-1299 error code range.
var (
	// ErrNotInitialized is returned when a treasury or vault account was
	// never written.
	ErrNotInitialized = errors.Register(1200, "not initialized")

	// ErrInsufficientFunds is returned when a vault balance cannot cover
	// the requested amount.
	ErrInsufficientFunds = errors.Register(1201, "insufficient funds")

	// ErrNotVaultOwner is returned when the vault owner account did not
	// authorize a spend.
	ErrNotVaultOwner = errors.Register(1202, "not the vault owner")
)
