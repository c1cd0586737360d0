package multisig

import "github.com/signet-one/signet"

// stateSeedTag derives the well-known configuration account. One multisig
// per program deployment; deployments wanting several instances deploy the
// program under distinct ids.
const stateSeedTag = "multisig_state"

// StateSeed returns the PDA seed of the configuration account.
func StateSeed() signet.PdaSeed {
	return signet.SeedFromTag(stateSeedTag)
}

// StateAccount computes the configuration account address for a deployed
// multisig program.
func StateAccount(program signet.ProgramID) signet.AccountID {
	return signet.DerivePDA(program, StateSeed())
}
