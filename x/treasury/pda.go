package treasury

import (
	"encoding/binary"

	"github.com/signet-one/signet"
)

const (
	stateSeedTag = "treasury_state"
	vaultSeedTag = "vault"
)

// StateSeed returns the PDA seed of the treasury singleton.
func StateSeed() signet.PdaSeed {
	return signet.SeedFromTag(stateSeedTag)
}

// StateAccount computes the treasury singleton address.
func StateAccount(program signet.ProgramID) signet.AccountID {
	return signet.DerivePDA(program, StateSeed())
}

// VaultSeed derives the seed for the n-th vault: the tag in the first
// bytes, the index in little endian in the last eight.
func VaultSeed(index uint64) signet.PdaSeed {
	seed := signet.SeedFromTag(vaultSeedTag)
	binary.LittleEndian.PutUint64(seed[len(seed)-8:], index)
	return seed
}

// VaultAccount computes the address of the n-th vault.
func VaultAccount(program signet.ProgramID, index uint64) signet.AccountID {
	return signet.DerivePDA(program, VaultSeed(index))
}
