package treasury

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/signettest"
)

func TestStateRoundtrip(t *testing.T) {
	state := &State{
		Initialized: true,
		Authority:   signettest.AccountID(1),
		VaultCount:  7,
	}

	raw, err := MarshalState(state)
	require.NoError(t, err)
	// bool + 32 byte authority + u64 counter
	require.Len(t, raw, 41)

	got, err := UnmarshalState(raw)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestVaultRoundtrip(t *testing.T) {
	vault := &Vault{
		Initialized: true,
		Owner:       signettest.AccountID(2),
		Balance:     123456789,
	}

	raw, err := MarshalVault(vault)
	require.NoError(t, err)

	got, err := UnmarshalVault(raw)
	require.NoError(t, err)
	assert.Equal(t, vault, got)
}

func TestUnmarshalVaultTruncated(t *testing.T) {
	vault := &Vault{Initialized: true, Owner: signettest.AccountID(2), Balance: 1}
	raw, err := MarshalVault(vault)
	require.NoError(t, err)

	for _, cut := range []int{0, 1, 33, len(raw) - 1} {
		_, err := UnmarshalVault(raw[:cut])
		assert.Error(t, err, "truncation at %d", cut)
	}
}

func TestStateValidate(t *testing.T) {
	cases := map[string]struct {
		state   State
		wantErr bool
	}{
		"valid": {
			state: State{Initialized: true, Authority: signettest.AccountID(1)},
		},
		"not initialized": {
			state:   State{Authority: signettest.AccountID(1)},
			wantErr: true,
		},
		"zero authority": {
			state:   State{Initialized: true},
			wantErr: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.state.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstructionRoundtrip(t *testing.T) {
	cases := map[string]signet.Msg{
		"init":         &InitMsg{},
		"create vault": &CreateVaultMsg{Owner: signettest.AccountID(3)},
		"deposit":      &DepositMsg{Amount: 10},
		"withdraw":     &WithdrawMsg{Amount: 10},
		"transfer":     &TransferMsg{Amount: 10},
	}

	for testName, msg := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := EncodeInstruction(msg)
			require.NoError(t, err)
			got, err := DecodeInstruction(raw)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}
