/*
Package errors implements custom error interfaces for the whole repository.

Error instances are categorized by a numeric code. Each returned error must
wrap one of the root errors declared here or registered by a program
package. Use Wrap and Wrapf to add context while preserving the root cause
and a stack trace, and the root error's Is method to test for a category:

	if multisig.ErrNotMember.Is(err) { ... }

Code ranges: this package reserves 1-99, programs register from 1000 up
(multisig 1100+, treasury 1200+, registry 1300+).
*/
package errors
