package signet

// Msg is one decoded instruction for a program to act on. It is just the
// request; authorization lives on the accounts delivered next to it.
type Msg interface {
	// Path returns the routing key for this message. It is used by the
	// router to locate the proper Handler and must be alphanumeric,
	// optionally with slashes separating the program namespace, e.g.
	// "multisig/propose".
	Path() string

	// Validate performs stateless checks on the message payload. It must
	// be called before any state is touched.
	Validate() error
}

// Call is the unit of work a handler receives: the decoded message plus
// the ordered account snapshots the host resolved for it. The account
// ordering is part of each instruction's contract and handlers index into
// it positionally.
type Call struct {
	Msg      Msg
	Accounts []AccountWithMetadata
}

// Account returns the snapshot at position i, or an empty account when the
// caller supplied too few. Handlers that require an account at a position
// must validate the count first.
func (c *Call) Account(i int) AccountWithMetadata {
	if i < 0 || i >= len(c.Accounts) {
		return AccountWithMetadata{}
	}
	return c.Accounts[i]
}

// ChainedCall is the delegated-call descriptor a program emits instead of
// mutating accounts it does not own. The host dispatches it to the target
// program after committing the emitting instruction. Accounts carry
// IsAuthorized=true where the emitting program vouches for them as if they
// had signed; the host verifies the listed seeds prove ownership.
type ChainedCall struct {
	ProgramID ProgramID
	Data      []byte
	Accounts  []AccountWithMetadata
	Seeds     []PdaSeed
}

// Result is what a successful Deliver produces. Post holds full snapshots
// of every account the instruction writes; the dispatcher persists them
// atomically. Data is an optional instruction-specific payload returned to
// the caller (e.g. a freshly assigned proposal index).
type Result struct {
	Post  []Account
	Calls []ChainedCall
	Data  []byte
}

// Registry is the setup side of a router: programs register one handler
// per message path.
type Registry interface {
	Handle(path string, h Handler)
}

// Handler processes one kind of message.
//
// Check validates a call without applying it; Deliver validates and then
// applies. Both must leave the provided snapshots untouched: mutations
// only ever travel back through Result.Post. Any error aborts the whole
// instruction with no observable side effects.
type Handler interface {
	Check(call *Call) error
	Deliver(call *Call) (*Result, error)
}
