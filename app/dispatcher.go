package app

import (
	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
	"github.com/signet-one/signet/store"
)

// maxCallDepth bounds chained-call recursion: the transaction's own
// instruction plus one level of delegated calls.
const maxCallDepth = 2

// DecodeFunc parses a program's wire instruction into a typed message.
type DecodeFunc func(data []byte) (signet.Msg, error)

type program struct {
	id     signet.ProgramID
	decode DecodeFunc
	router *Router
}

// Dispatcher is the host simulator: it resolves an envelope's accounts
// against the ledger, routes the decoded instruction to the right program
// handler, commits post states atomically, and relays chained calls to
// their target programs.
type Dispatcher struct {
	db       store.CacheableKVStore
	programs map[signet.ProgramID]*program
}

func NewDispatcher(db store.CacheableKVStore) *Dispatcher {
	return &Dispatcher{
		db:       db,
		programs: make(map[signet.ProgramID]*program),
	}
}

// RegisterProgram mounts a program at its id. Setup-time only, so a
// duplicate id panics.
func (d *Dispatcher) RegisterProgram(id signet.ProgramID, decode DecodeFunc, router *Router) {
	if err := id.Validate(); err != nil {
		panic("registering program: " + err.Error())
	}
	if _, ok := d.programs[id]; ok {
		panic("re-registering program: " + id.String())
	}
	d.programs[id] = &program{id: id, decode: decode, router: router}
}

// Envelope is one submitted transaction: a target program, its raw
// instruction bytes, the ordered account list the instruction operates on,
// and the subset of those accounts that signed.
type Envelope struct {
	Program     signet.ProgramID
	Instruction []byte
	Accounts    []signet.AccountID
	Signers     []signet.AccountID
}

// Check validates the envelope against current state without applying it.
func (d *Dispatcher) Check(env *Envelope) error {
	prog, ok := d.programs[env.Program]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "program %s", env.Program)
	}
	msg, handler, err := d.route(prog, env.Instruction)
	if err != nil {
		return err
	}
	accounts, err := d.resolveAccounts(d.db, env.Accounts, env.Signers)
	if err != nil {
		return err
	}
	return handler.Check(&signet.Call{Msg: msg, Accounts: accounts})
}

// Deliver applies the envelope. All writes of the instruction and any
// chained calls it emits land in one overlay that is committed only if
// every step succeeds; any error leaves the ledger untouched.
func (d *Dispatcher) Deliver(env *Envelope) (res *signet.Result, err error) {
	cache := d.db.CacheWrap()
	defer func() {
		if err != nil {
			cache.Discard()
		}
	}()
	defer errors.Recover(&err)

	prog, ok := d.programs[env.Program]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "program %s", env.Program)
	}
	accounts, err := d.resolveAccounts(cache, env.Accounts, env.Signers)
	if err != nil {
		return nil, err
	}
	res, err = d.deliver(cache, prog, env.Instruction, accounts, 1)
	if err != nil {
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return res, nil
}

func (d *Dispatcher) deliver(
	cache store.KVStore,
	prog *program,
	instruction []byte,
	accounts []signet.AccountWithMetadata,
	depth int,
) (*signet.Result, error) {
	if depth > maxCallDepth {
		return nil, errors.Wrap(errors.ErrState, "chained call depth exceeded")
	}
	msg, handler, err := d.route(prog, instruction)
	if err != nil {
		return nil, err
	}
	res, err := handler.Deliver(&signet.Call{Msg: msg, Accounts: accounts})
	if err != nil {
		return nil, err
	}
	for _, post := range res.Post {
		if err := SaveAccount(cache, post); err != nil {
			return nil, err
		}
	}
	for _, cc := range res.Calls {
		if err := d.relay(cache, prog.id, cc, depth+1); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// relay dispatches one chained call. The callee sees fresh snapshots of
// the accounts the caller listed, with the caller's pre-authorization
// flags carried over only where a seed proves the account belongs to the
// caller.
func (d *Dispatcher) relay(cache store.KVStore, caller signet.ProgramID, cc signet.ChainedCall, depth int) error {
	target, ok := d.programs[cc.ProgramID]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "chained call program %s", cc.ProgramID)
	}
	accounts := make([]signet.AccountWithMetadata, len(cc.Accounts))
	for i, pre := range cc.Accounts {
		acct, err := LoadAccount(cache, pre.ID)
		if err != nil {
			return err
		}
		if pre.IsAuthorized {
			if !derivedFromCaller(caller, pre.ID, cc.Seeds) {
				return errors.Wrapf(errors.ErrUnauthorized,
					"no seed proves %s belongs to %s", pre.ID, caller)
			}
		}
		accounts[i] = signet.AccountWithMetadata{Account: acct, IsAuthorized: pre.IsAuthorized}
	}
	_, err := d.deliver(cache, target, cc.Data, accounts, depth)
	return errors.Wrapf(err, "chained call to %s", cc.ProgramID)
}

func derivedFromCaller(caller signet.ProgramID, id signet.AccountID, seeds []signet.PdaSeed) bool {
	for _, seed := range seeds {
		if signet.DerivePDA(caller, seed).Equals(id) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) route(prog *program, instruction []byte) (signet.Msg, signet.Handler, error) {
	msg, err := prog.decode(instruction)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decode instruction")
	}
	handler := prog.router.Handler(msg.Path())
	if handler == nil {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", msg.Path())
	}
	return msg, handler, nil
}

func (d *Dispatcher) resolveAccounts(
	db store.ReadOnlyKVStore,
	ids []signet.AccountID,
	signers []signet.AccountID,
) ([]signet.AccountWithMetadata, error) {
	accounts := make([]signet.AccountWithMetadata, len(ids))
	for i, id := range ids {
		acct, err := LoadAccount(db, id)
		if err != nil {
			return nil, err
		}
		accounts[i] = signet.AccountWithMetadata{
			Account:      acct,
			IsAuthorized: containsID(signers, id),
		}
	}
	return accounts, nil
}

func containsID(ids []signet.AccountID, id signet.AccountID) bool {
	for _, cur := range ids {
		if cur.Equals(id) {
			return true
		}
	}
	return false
}
