package registry

import (
	"github.com/signet-one/signet"
	"github.com/signet-one/signet/errors"
)

// Clock returns the ledger's notion of now, in unix seconds. Injected so
// tests and deterministic replays control registration timestamps.
type Clock func() uint64

// RegisterRoutes instantiates and registers all handlers in this package.
func RegisterRoutes(r signet.Registry, now Clock) {
	r.Handle(PathRegister, RegisterHandler{now: now})
	r.Handle(PathUpdate, UpdateHandler{})
}

// RegisterHandler publishes a new program entry and bumps the counter.
type RegisterHandler struct {
	now Clock
}

var _ signet.Handler = RegisterHandler{}

func (h RegisterHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h RegisterHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, state, err := h.validate(call)
	if err != nil {
		return nil, err
	}

	entry := Entry{
		ProgramID:    msg.ProgramID,
		Name:         msg.Name,
		Version:      msg.Version,
		Author:       call.Accounts[2].ID,
		ManifestCID:  msg.ManifestCID,
		Description:  msg.Description,
		RegisteredAt: h.now(),
		Tags:         msg.Tags,
	}
	entryData, err := MarshalEntry(&entry)
	if err != nil {
		return nil, err
	}
	state.ProgramCount++
	stateData, err := MarshalState(state)
	if err != nil {
		return nil, err
	}
	post := []signet.Account{
		{ID: call.Accounts[0].ID, Data: stateData},
		{ID: call.Accounts[1].ID, Data: entryData},
	}
	return &signet.Result{Post: post}, nil
}

func (h RegisterHandler) validate(call *signet.Call) (*RegisterMsg, *State, error) {
	msg, ok := call.Msg.(*RegisterMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(call.Accounts) < 3 {
		return nil, nil, errors.Wrap(errors.ErrInput, "register requires state, entry and author accounts")
	}
	// The state singleton is created on first use; its author becomes the
	// registry authority.
	state := &State{Authority: call.Accounts[2].ID}
	if !call.Accounts[0].IsEmpty() {
		var err error
		if state, err = UnmarshalState(call.Accounts[0].Data); err != nil {
			return nil, nil, err
		}
	}
	if !call.Accounts[1].IsEmpty() {
		return nil, nil, errors.Wrapf(ErrEntryExists, "%s", msg.ProgramID)
	}
	if !call.Accounts[2].IsAuthorized {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "author %s must sign", call.Accounts[2].ID)
	}
	return msg, state, nil
}

// UpdateHandler rewrites the mutable fields of an entry.
type UpdateHandler struct{}

var _ signet.Handler = UpdateHandler{}

func (h UpdateHandler) Check(call *signet.Call) error {
	_, _, err := h.validate(call)
	return err
}

func (h UpdateHandler) Deliver(call *signet.Call) (*signet.Result, error) {
	msg, entry, err := h.validate(call)
	if err != nil {
		return nil, err
	}

	entry.Version = msg.Version
	entry.ManifestCID = msg.ManifestCID
	entry.Description = msg.Description
	entry.Tags = msg.Tags

	data, err := MarshalEntry(entry)
	if err != nil {
		return nil, err
	}
	post := signet.Account{ID: call.Accounts[0].ID, Data: data}
	return &signet.Result{Post: []signet.Account{post}}, nil
}

func (h UpdateHandler) validate(call *signet.Call) (*UpdateMsg, *Entry, error) {
	msg, ok := call.Msg.(*UpdateMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrType, call.Msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(call.Accounts) < 2 {
		return nil, nil, errors.Wrap(errors.ErrInput, "update requires entry and author accounts")
	}
	if call.Accounts[0].IsEmpty() {
		return nil, nil, errors.Wrapf(ErrEntryNotFound, "%s", call.Accounts[0].ID)
	}
	entry, err := UnmarshalEntry(call.Accounts[0].Data)
	if err != nil {
		return nil, nil, err
	}
	author := call.Accounts[1]
	if !author.ID.Equals(entry.Author) {
		return nil, nil, errors.Wrapf(ErrNotAuthor, "%s", author.ID)
	}
	if !author.IsAuthorized {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "author %s must sign", author.ID)
	}
	return msg, entry, nil
}
