/*
Package signet defines the kernel types shared by every program in the
repository: the account model the host ledger hands to us, the instruction
and handler contracts, and the delegated-call descriptor emitted when a
program wants another program to act on its behalf.

The packages under x/ implement the actual programs (multisig governance,
treasury vaults, program registry). They are pure state transition
functions: accounts in, post states and chained calls out. Everything
stateful or concurrent (signatures, nonces, ordering, persistence) belongs
to the host and is modeled here only at the interface boundary.
*/
package signet
