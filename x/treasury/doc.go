/*
Package treasury implements the vault program: a record store of
balance-bearing vaults, each with an owner whose authorization is required
to spend. There is no voting here; governed vaults simply name a multisig
state PDA as owner, and the multisig pre-authorizes that account in the
chained call it emits on execution.
*/
package treasury
