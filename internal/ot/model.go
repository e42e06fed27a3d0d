package ot

import "fmt"

// State is the Model's current phase.
type State int

const (
	Ready State = iota
	Sending
	Buffering
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Sending:
		return "sending"
	case Buffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// Model is the client-side operational-transformation core: it owns
// document-version bookkeeping, queues unsent local edits, merges
// compatible adjacent edits, defers remote edits while a local edit is
// in flight, and collides concurrent edit pairs.
//
// Model is single-threaded cooperative: every public method runs to
// completion atomically from the caller's perspective. The host must
// serialize Submit, Receive, and Correct against each other.
type Model struct {
	state            State
	version          int
	correctedVersion int
	sending          *Edit
	unsent           []Edit
	unapplied        []Edit
}

// NewModel creates a Model at the given base server version. baseVersion
// must be non-negative.
func NewModel(baseVersion int) *Model {
	return &Model{
		state:   Ready,
		version: baseVersion,
	}
}

// State reports the current phase, for hosts that want to assert on it in
// tests or logs.
func (m *Model) State() State {
	return m.state
}

// Version reports the applied server version.
func (m *Model) Version() int {
	return m.version
}

// Submit accepts a locally originated edit that the host has already
// applied to its own document. Depending on state this either sends the
// edit immediately or queues it behind the in-flight edit.
func (m *Model) Submit(edit Edit) ActionRecord {
	switch m.state {
	case Ready:
		edit.Version = m.version + 1
		e := edit
		m.sending = &e
		m.state = Sending

		return ActionRecord{Kind: ActionSend, Send: &e}
	case Sending, Buffering:
		m.unsent = append(m.unsent, edit)

		return ActionRecord{Kind: Nothing}
	default:
		return errorAction(fmt.Sprintf("submit: unknown state %v", m.state))
	}
}

// Receive accepts a batch of remote edits delivered by the server, in
// server order.
func (m *Model) Receive(edits []Edit) ActionRecord {
	switch m.state {
	case Ready:
		m.version += len(edits)

		return ActionRecord{Kind: ActionApply, Apply: edits}
	case Sending:
		m.unapplied = append(m.unapplied, edits...)

		return ActionRecord{Kind: Nothing}
	case Buffering:
		m.unapplied = append(m.unapplied, edits...)

		return m.resolve()
	default:
		return errorAction(fmt.Sprintf("receive: unknown state %v", m.state))
	}
}

// Correct accepts the server's acknowledgment of the in-flight edit: the
// version it was assigned in the linearized server history.
func (m *Model) Correct(version int) ActionRecord {
	switch m.state {
	case Sending:
		m.correctedVersion = version
		m.state = Buffering

		return m.resolve()
	case Ready, Buffering:
		return errorAction("received unexpected correct action")
	default:
		return errorAction(fmt.Sprintf("correct: unknown state %v", m.state))
	}
}

// resolve runs the Buffering-state reconciliation. Its precondition for
// making progress is that every server edit up to but not including
// correctedVersion has been received; otherwise it is a no-op and the
// Model stays in Buffering.
func (m *Model) resolve() ActionRecord {
	if m.version+len(m.unapplied) < m.correctedVersion-1 {
		return ActionRecord{Kind: Nothing}
	}

	m.version += len(m.unapplied) + 1

	client := make([]*Edit, 0, 1+len(m.unsent))
	client = append(client, m.sending)

	for i := range m.unsent {
		client = append(client, &m.unsent[i])
	}

	unapplied := m.unapplied
	for i := range unapplied {
		for _, c := range client {
			Collide(&unapplied[i], c)
		}
	}

	m.sending = nil
	m.unapplied = nil

	if len(m.unsent) == 0 {
		m.state = Ready

		return ActionRecord{Kind: ActionApply, Apply: unapplied}
	}

	next := m.popMerged()
	next.Version = m.version + 1
	m.sending = &next
	m.state = Sending

	return ActionRecord{Kind: ActionApplyAndSend, Apply: unapplied, Send: &next}
}

// popMerged pops the head of unsent and absorbs every following entry
// that merges with it, returning the coalesced edit. This is the
// throughput win: bursts of keystrokes queued behind a prior in-flight
// edit collapse into one outbound message.
func (m *Model) popMerged() Edit {
	head := m.unsent[0]
	rest := m.unsent[1:]

	i := 0
	for i < len(rest) && Merge(&head, &rest[i]) {
		i++
	}

	m.unsent = rest[i:]

	return head
}
