package treasury

import (
	"math"
	"testing"

	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
	"github.com/signet-one/signet/signettest"
)

var (
	testStateID = signettest.AccountID(100)
	testVaultID = signettest.AccountID(101)
	testOtherID = signettest.AccountID(102)
)

func stateSnapshot(t *testing.T, state *State) signet.AccountWithMetadata {
	t.Helper()
	data, err := MarshalState(state)
	if err != nil {
		t.Fatalf("marshal state: %+v", err)
	}
	return signettest.Acct(testStateID, data, false)
}

func vaultSnapshot(t *testing.T, id signet.AccountID, vault *Vault, authorized bool) signet.AccountWithMetadata {
	t.Helper()
	data, err := MarshalVault(vault)
	if err != nil {
		t.Fatalf("marshal vault: %+v", err)
	}
	return signettest.Acct(id, data, authorized)
}

func resultVault(t *testing.T, res *signet.Result, idx int) *Vault {
	t.Helper()
	if len(res.Post) <= idx {
		t.Fatalf("result carries %d post states, want at least %d", len(res.Post), idx+1)
	}
	vault, err := UnmarshalVault(res.Post[idx].Data)
	if err != nil {
		t.Fatalf("unmarshal post vault: %+v", err)
	}
	return vault
}

func TestInitHandler(t *testing.T) {
	authority := signettest.AccountID(1)
	h := InitHandler{}

	call := signettest.Call(&InitMsg{},
		signettest.Acct(testStateID, nil, false),
		signettest.Acct(authority, nil, true),
	)
	if err := h.Check(call); err != nil {
		t.Fatalf("check: %+v", err)
	}
	res, err := h.Deliver(call)
	if err != nil {
		t.Fatalf("deliver: %+v", err)
	}
	state, err := UnmarshalState(res.Post[0].Data)
	if err != nil {
		t.Fatalf("unmarshal post state: %+v", err)
	}
	if !state.Initialized || !state.Authority.Equals(authority) || state.VaultCount != 0 {
		t.Fatalf("unexpected state: %+v", state)
	}

	// Initializing twice must fail.
	again := signettest.Call(&InitMsg{},
		signettest.Acct(testStateID, res.Post[0].Data, false),
		signettest.Acct(authority, nil, true),
	)
	if _, err := h.Deliver(again); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want ErrDuplicate, got %+v", err)
	}

	// The authority must sign.
	unsigned := signettest.Call(&InitMsg{},
		signettest.Acct(testStateID, nil, false),
		signettest.Acct(authority, nil, false),
	)
	if _, err := h.Deliver(unsigned); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want ErrUnauthorized, got %+v", err)
	}
}

func TestCreateVaultHandler(t *testing.T) {
	creator := signettest.AccountID(1)
	owner := signettest.AccountID(2)
	h := CreateVaultHandler{}

	state := &State{Initialized: true, Authority: creator, VaultCount: 3}
	res, err := h.Deliver(signettest.Call(
		&CreateVaultMsg{Owner: owner},
		stateSnapshot(t, state),
		signettest.Acct(testVaultID, nil, false),
		signettest.Acct(creator, nil, true),
	))
	if err != nil {
		t.Fatalf("deliver: %+v", err)
	}

	post, err := UnmarshalState(res.Post[0].Data)
	if err != nil {
		t.Fatalf("unmarshal post state: %+v", err)
	}
	if post.VaultCount != 4 {
		t.Fatalf("want vault count 4, got %d", post.VaultCount)
	}
	vault := resultVault(t, res, 1)
	if !vault.Initialized || !vault.Owner.Equals(owner) || vault.Balance != 0 {
		t.Fatalf("unexpected vault: %+v", vault)
	}

	// Creating over an existing vault must fail.
	occupied := signettest.Call(
		&CreateVaultMsg{Owner: owner},
		stateSnapshot(t, state),
		signettest.Acct(testVaultID, res.Post[1].Data, false),
		signettest.Acct(creator, nil, true),
	)
	if _, err := h.Deliver(occupied); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want ErrDuplicate, got %+v", err)
	}
}

func TestDepositHandler(t *testing.T) {
	depositor := signettest.AccountID(1)
	owner := signettest.AccountID(2)
	h := DepositHandler{}

	vault := &Vault{Initialized: true, Owner: owner, Balance: 100}
	res, err := h.Deliver(signettest.Call(
		&DepositMsg{Amount: 50},
		vaultSnapshot(t, testVaultID, vault, false),
		signettest.Acct(depositor, nil, true),
	))
	if err != nil {
		t.Fatalf("deliver: %+v", err)
	}
	if got := resultVault(t, res, 0); got.Balance != 150 {
		t.Fatalf("want balance 150, got %d", got.Balance)
	}

	// Deposits do not need the owner, but overflow must abort.
	full := &Vault{Initialized: true, Owner: owner, Balance: math.MaxUint64}
	_, err = h.Deliver(signettest.Call(
		&DepositMsg{Amount: 1},
		vaultSnapshot(t, testVaultID, full, false),
		signettest.Acct(depositor, nil, true),
	))
	if !errors.ErrOverflow.Is(err) {
		t.Fatalf("want ErrOverflow, got %+v", err)
	}

	// Depositing into an unknown vault must fail.
	_, err = h.Deliver(signettest.Call(
		&DepositMsg{Amount: 1},
		signettest.Acct(testVaultID, nil, false),
		signettest.Acct(depositor, nil, true),
	))
	if !ErrNotInitialized.Is(err) {
		t.Fatalf("want ErrNotInitialized, got %+v", err)
	}
}

func TestWithdrawHandler(t *testing.T) {
	owner := signettest.AccountID(2)
	h := WithdrawHandler{}

	vault := &Vault{Initialized: true, Owner: owner, Balance: 100}

	cases := map[string]struct {
		amount  uint64
		ownerID signet.AccountID
		signed  bool
		want    uint64
		wantErr *errors.Error
	}{
		"owner withdraws": {
			amount:  40,
			ownerID: owner,
			signed:  true,
			want:    60,
		},
		"insufficient funds": {
			amount:  101,
			ownerID: owner,
			signed:  true,
			wantErr: ErrInsufficientFunds,
		},
		"not the owner": {
			amount:  40,
			ownerID: testOtherID,
			signed:  true,
			wantErr: ErrNotVaultOwner,
		},
		"owner did not sign": {
			amount:  40,
			ownerID: owner,
			signed:  false,
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res, err := h.Deliver(signettest.Call(
				&WithdrawMsg{Amount: tc.amount},
				vaultSnapshot(t, testVaultID, vault, false),
				signettest.Acct(tc.ownerID, nil, tc.signed),
			))
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v, got %+v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("deliver: %+v", err)
			}
			if got := resultVault(t, res, 0); got.Balance != tc.want {
				t.Fatalf("want balance %d, got %d", tc.want, got.Balance)
			}
		})
	}
}

func TestTransferHandler(t *testing.T) {
	owner := signettest.AccountID(2)
	h := TransferHandler{}

	from := &Vault{Initialized: true, Owner: owner, Balance: 100}
	to := &Vault{Initialized: true, Owner: testOtherID, Balance: 5}

	res, err := h.Deliver(signettest.Call(
		&TransferMsg{Amount: 30},
		vaultSnapshot(t, testVaultID, from, false),
		vaultSnapshot(t, testOtherID, to, false),
		signettest.Acct(owner, nil, true),
	))
	if err != nil {
		t.Fatalf("deliver: %+v", err)
	}
	if got := resultVault(t, res, 0); got.Balance != 70 {
		t.Fatalf("want source balance 70, got %d", got.Balance)
	}
	if got := resultVault(t, res, 1); got.Balance != 35 {
		t.Fatalf("want recipient balance 35, got %d", got.Balance)
	}

	// A pre-authorized owner account counts the same as a signature. This
	// is the path a multisig chained call takes.
	res, err = h.Deliver(signettest.Call(
		&TransferMsg{Amount: 30},
		vaultSnapshot(t, testVaultID, from, false),
		vaultSnapshot(t, testOtherID, to, false),
		signettest.Acct(owner, nil, true),
	))
	if err != nil {
		t.Fatalf("deliver with pre-authorization: %+v", err)
	}

	// The recipient's owner cannot spend the source vault.
	_, err = h.Deliver(signettest.Call(
		&TransferMsg{Amount: 30},
		vaultSnapshot(t, testVaultID, from, false),
		vaultSnapshot(t, testOtherID, to, false),
		signettest.Acct(testOtherID, nil, true),
	))
	if !ErrNotVaultOwner.Is(err) {
		t.Fatalf("want ErrNotVaultOwner, got %+v", err)
	}

	// Draining more than the balance must abort.
	_, err = h.Deliver(signettest.Call(
		&TransferMsg{Amount: 101},
		vaultSnapshot(t, testVaultID, from, false),
		vaultSnapshot(t, testOtherID, to, false),
		signettest.Acct(owner, nil, true),
	))
	if !ErrInsufficientFunds.Is(err) {
		t.Fatalf("want ErrInsufficientFunds, got %+v", err)
	}
}

func TestVaultSeedDistinct(t *testing.T) {
	program := signettest.ProgramID(1)
	a := VaultAccount(program, 0)
	b := VaultAccount(program, 1)
	if a.Equals(b) {
		t.Fatal("different vault indices must derive different addresses")
	}
	if !VaultAccount(program, 0).Equals(a) {
		t.Fatal("vault derivation must be deterministic")
	}
}
