package registry

import "github.com/signet-one/signet"

const (
	stateSeedTag = "registry_state"
	entrySeedTag = "program_entry___"
)

// StateSeed returns the PDA seed of the registry singleton.
func StateSeed() signet.PdaSeed {
	return signet.SeedFromTag(stateSeedTag)
}

// StateAccount computes the registry singleton address.
func StateAccount(program signet.ProgramID) signet.AccountID {
	return signet.DerivePDA(program, StateSeed())
}

// EntrySeed derives the seed of a program's entry: the padded tag XORed
// with the registered program's id, so every program maps to a distinct
// entry account.
func EntrySeed(id signet.ProgramID) signet.PdaSeed {
	seed := signet.SeedFromTag(entrySeedTag)
	for i := range seed {
		seed[i] ^= id[i]
	}
	return seed
}

// EntryAccount computes the address of a program's entry.
func EntryAccount(program signet.ProgramID, id signet.ProgramID) signet.AccountID {
	return signet.DerivePDA(program, EntrySeed(id))
}
