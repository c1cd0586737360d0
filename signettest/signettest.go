// Package signettest provides test helpers: deterministic identifiers,
// ledger fixtures and call builders shared by the package test suites.
package signettest

import (
	"crypto/rand"
	"testing"

	"github.com/signet-one/signet"
)

// AccountID returns a deterministic account id built from n. Calls with
// the same n return the same id; n must not be zero because the zero id is
// reserved.
func AccountID(n byte) signet.AccountID {
	if n == 0 {
		panic("account id fixture requires n > 0")
	}
	var id signet.AccountID
	for i := range id {
		id[i] = n
	}
	return id
}

// AccountIDs returns n distinct deterministic account ids, starting at 1.
func AccountIDs(n int) []signet.AccountID {
	ids := make([]signet.AccountID, n)
	for i := range ids {
		ids[i] = AccountID(byte(i + 1))
	}
	return ids
}

// ProgramID returns a deterministic program id built from n.
func ProgramID(n byte) signet.ProgramID {
	if n == 0 {
		panic("program id fixture requires n > 0")
	}
	var id signet.ProgramID
	for i := range id {
		id[i] = ^n
	}
	id[0] = n
	return id
}

// RandomAccountID returns a cryptographically random account id.
func RandomAccountID(t testing.TB) signet.AccountID {
	t.Helper()

	var id signet.AccountID
	if _, err := rand.Read(id[:]); err != nil {
		t.Fatalf("cannot read random bytes: %s", err)
	}
	return id
}

// Acct builds an account snapshot the way handlers receive them.
func Acct(id signet.AccountID, data []byte, authorized bool) signet.AccountWithMetadata {
	return signet.AccountWithMetadata{
		Account:      signet.Account{ID: id, Data: data},
		IsAuthorized: authorized,
	}
}

// Call builds a handler call from a message and ordered account snapshots.
func Call(msg signet.Msg, accounts ...signet.AccountWithMetadata) *signet.Call {
	return &signet.Call{Msg: msg, Accounts: accounts}
}

// Handler is a signet.Handler double that counts calls and returns
// configured results.
type Handler struct {
	checkCall int
	CheckErr  error

	deliverCall   int
	DeliverResult *signet.Result
	DeliverErr    error
}

var _ signet.Handler = (*Handler)(nil)

func (h *Handler) Check(call *signet.Call) error {
	h.checkCall++
	return h.CheckErr
}

func (h *Handler) Deliver(call *signet.Call) (*signet.Result, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	if h.DeliverResult != nil {
		return h.DeliverResult, nil
	}
	return &signet.Result{}, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
