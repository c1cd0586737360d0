/*
Package multisig implements M-of-N threshold governance: a roster of
members collectively authorizes actions by voting on proposals, and a
proposal that collects threshold-many approvals can be executed.

The configuration account holds the threshold, the member roster, a
monotonic proposal counter and the live proposal set. Proposals are born
Active, collect approve/reject votes (a member's latest vote wins), and
resolve to Executed or Rejected; resolved proposals are pruned from the
live set. A rejection that leaves fewer non-rejecting members than the
threshold resolves the proposal immediately, since quorum became
unreachable.

Execution of transfer and delegated-call actions never performs the effect
itself: it emits a ChainedCall descriptor proving that a quorum approved
the exact target program, payload and account list, and the host dispatches
it. Membership and threshold changes mutate the configuration directly and
re-validate the threshold invariant before anything is persisted.
*/
package multisig
