/*
Package app hosts programs over the ledger. The Dispatcher plays the part
of the production runtime: it resolves an envelope's account list into
snapshots, marks which of them signed, routes the instruction to the
registered program, persists the resulting post states in one atomic
overlay, and relays any chained calls the program emitted after verifying
their PDA seeds.
*/
package app
