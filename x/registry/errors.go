package registry

import "github.com/signet-one/signet/errors"

// Registry takes the 1300-1399 error code range.
var (
	// ErrEntryExists is returned when a program id was already registered.
	ErrEntryExists = errors.Register(1300, "program already registered")

	// ErrEntryNotFound is returned when no entry exists for a program id.
	ErrEntryNotFound = errors.Register(1301, "program not registered")

	// ErrNotAuthor is returned when someone other than the registering
	// author tries to update an entry.
	ErrNotAuthor = errors.Register(1302, "not the entry author")

	// ErrInvalidEntry is returned when entry fields exceed their limits.
	ErrInvalidEntry = errors.Register(1303, "invalid entry")
)
