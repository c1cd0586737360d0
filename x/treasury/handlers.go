package treasury

import (
	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// RegisterRoutes instantiates and registers all handlers in this package.
func RegisterRoutes(r signet.Registry) {
	r.Handle(PathInit, InitHandler{})
	r.Handle(PathCreateVault, CreateVaultHandler{})
	r.Handle(PathDeposit, DepositHandler{})
	r.Handle(PathWithdraw, WithdrawHandler{})
	r.Handle(PathTransfer, TransferHandler{})
}

func loadVault(acc signet.AccountWithMetadata) (*Vault, error) {
	if acc.IsEmpty() {
		return nil, errors.Wrapf(ErrNotInitialized, "vault %s", acc.ID)
	}
	vault, err := UnmarshalVault(acc.Data)
	if err != nil {
		return nil, err
	}
	if !vault.Initialized {
		return nil, errors.Wrapf(ErrNotInitialized, "vault %s", acc.ID)
	}
	return vault, nil
}

func saveVault(id signet.AccountID, vault *Vault) (signet.Account, error) {
	data, err := MarshalVault(vault)
	if err != nil {
		return signet.Account{}, err
	}
	return signet.Account{ID: id, Data: data}, nil
}

// InitHandler writes the treasury singleton.
type InitHandler struct{}

var _ signet.Handler = InitHandler{}

func (h InitHandler) Check(call *signet.Call) error {
	_, err := h.validate(call)
	return err
}

func (h InitHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	authority, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	data, err := MarshalState(&State{Initialized: true, Authority: authority})
	if err != nil {
		return nil, err
	}
	post := signet.Account{ID: call.Accounts[0].ID, Data: data}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h InitHandler) validate(call *signet.Call) (signet.AccountID, error) {
	if _, ok := call.Msg.(*InitMsg); !ok {
		return signet.AccountID{}, errors.WithType(errors.ErrType, call.Msg)
	}
	if len(call.Accounts) < 2 {
		return signet.AccountID{}, errors.Wrap(errors.ErrInput, "init requires state and authority accounts")
	}
	if !call.Accounts[0].IsEmpty() {
		return signet.AccountID{}, errors.Wrap(errors.ErrDuplicate, "treasury already initialized")
	}
	authority := call.Accounts[1]
	if !authority.IsAuthorized {
		return signet.AccountID{}, errors.Wrapf(errors.ErrUnauthorized, "authority %s must sign", authority.ID)
	}
	return authority.ID, nil
}

// CreateVaultHandler writes an empty vault and bumps the vault counter.
type CreateVaultHandler struct{}

var _ signet.Handler = CreateVaultHandler{}

func (h CreateVaultHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h CreateVaultHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, state, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	state.VaultCount++
	stateData, err := MarshalState(state)
	if err != nil {
		return nil, err
	}
	vaultPost, err := saveVault(call.Accounts[1].ID, &Vault{Initialized: true, Owner: msg.Owner})
	if err != nil {
		return nil, err
	}
	post := []signet.Account{
		{ID: call.Accounts[0].ID, Data: stateData},
		vaultPost,
	}
	return &signet.Result{Post: post}, nil
}

func (h CreateVaultHandler) validate(call *signet.Call) (*CreateVaultMsg, *State, error) {
	msg, ok := call.Msg.(*CreateVaultMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(call.Accounts) < 3 {
		return nil, nil, errors.Wrap(errors.ErrInput, "create vault requires state, vault and creator accounts")
	}
	if call.Accounts[0].IsEmpty() {
		return nil, nil, errors.Wrap(ErrNotInitialized, "treasury state")
	}
	state, err := UnmarshalState(call.Accounts[0].Data)
	if err != nil {
		return nil, nil, err
	}
	if !call.Accounts[1].IsEmpty() {
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "vault %s exists", call.Accounts[1].ID)
	}
	if !call.Accounts[2].IsAuthorized {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "creator %s must sign", call.Accounts[2].ID)
	}
	return msg, state, nil
}

// DepositHandler credits a vault.
type DepositHandler struct{}

var _ signet.Handler = DepositHandler{}

func (h DepositHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h DepositHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, vault, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	if vault.Balance+msg.Amount < vault.Balance {
		return nil, errors.Wrap(errors.ErrOverflow, "vault balance")
	}
	vault.Balance += msg.Amount
	post, err := saveVault(call.Accounts[0].ID, vault)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h DepositHandler) validate(call *signet.Call) (*DepositMsg, *Vault, error) {
	msg, ok := call.Msg.(*DepositMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(call.Accounts) < 2 {
		return nil, nil, errors.Wrap(errors.ErrInput, "deposit requires vault and depositor accounts")
	}
	if !call.Accounts[1].IsAuthorized {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "depositor %s must sign", call.Accounts[1].ID)
	}
	vault, err := loadVault(call.Accounts[0])
	if err != nil {
		return nil, nil, err
	}
	return msg, vault, nil
}

// WithdrawHandler debits a vault with the owner's authorization.
type WithdrawHandler struct{}

var _ signet.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h WithdrawHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, vault, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	vault.Balance -= msg.Amount
	post, err := saveVault(call.Accounts[0].ID, vault)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h WithdrawHandler) validate(call *signet.Call) (*WithdrawMsg, *Vault, error) {
	msg, ok := call.Msg.(*WithdrawMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(call.Accounts) < 2 {
		return nil, nil, errors.Wrap(errors.ErrInput, "withdraw requires vault and owner accounts")
	}
	vault, err := loadVault(call.Accounts[0])
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeOwner(vault, call.Accounts[1]); err != nil {
		return nil, nil, err
	}
	if vault.Balance < msg.Amount {
		return nil, nil, errors.Wrapf(ErrInsufficientFunds, "have %d, need %d", vault.Balance, msg.Amount)
	}
	return msg, vault, nil
}

// TransferHandler moves funds between two vaults.
type TransferHandler struct{}

var _ signet.Handler = TransferHandler{}

func (h TransferHandler) Check(call *signet.Call) error {
	_, _, _, err := h.validate(call)
	return err
}

func (h TransferHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, from, to, err := h.validate(call)
	if err != nil {
		return nil, err
	}
	if to.Balance+msg.Amount < to.Balance {
		return nil, errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	from.Balance -= msg.Amount
	to.Balance += msg.Amount

	fromPost, err := saveVault(call.Accounts[0].ID, from)
	if err != nil {
		return nil, err
	}
	toPost, err := saveVault(call.Accounts[1].ID, to)
	if err != nil {
		return nil, err
	}
	return &signet.Result{Post: []signet.Account{fromPost, toPost}}, nil
}

func (h TransferHandler) validate(call *signet.Call) (*TransferMsg, *Vault, *Vault, error) {
	msg, ok := call.Msg.(*TransferMsg)
	if !ok {
		return nil, nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if len(call.Accounts) < 3 {
		return nil, nil, nil, errors.Wrap(errors.ErrInput, "transfer requires source, recipient and owner accounts")
	}
	from, err := loadVault(call.Accounts[0])
	if err != nil {
		return nil, nil, nil, err
	}
	to, err := loadVault(call.Accounts[1])
	if err != nil {
		return nil, nil, nil, err
	}
	if err := authorizeOwner(from, call.Accounts[2]); err != nil {
		return nil, nil, nil, err
	}
	if from.Balance < msg.Amount {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientFunds, "have %d, need %d", from.Balance, msg.Amount)
	}
	return msg, from, to, nil
}

// authorizeOwner checks that the supplied account is the vault's owner and
// carries the host's authorization flag. The flag is how a multisig
// chained call speaks for a PDA owner that cannot sign.
func authorizeOwner(vault *Vault, owner signet.AccountWithMetadata) error {
	if !owner.ID.Equals(vault.Owner) {
		return errors.Wrapf(ErrNotVaultOwner, "%s", owner.ID)
	}
	if !owner.IsAuthorized {
		return errors.Wrapf(errors.ErrUnauthorized, "owner %s did not authorize", owner.ID)
	}
	return nil
}
