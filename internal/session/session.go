// Package session wires together the OT core, the local document, the
// transport, and the cache into the single object a UI drives: open a
// document, type into it, watch remote edits land.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/driftdoc/client/internal/cache"
	"github.com/driftdoc/client/internal/localdoc"
	"github.com/driftdoc/client/internal/ot"
	"github.com/driftdoc/client/internal/wire"
)

// ErrSessionClosed is returned by SubmitLocalEdit once Close has been
// called.
var ErrSessionClosed = errors.New("session is closed")

// Conn is the transport a Session drives. transport.Client satisfies
// this; tests can supply a narrower fake.
type Conn interface {
	Send(env wire.Envelope) error
	Receive() (wire.Envelope, error)
	Close() error
}

// Update is what a Session publishes to its subscribers: a content
// change (local or remote) and the version it settled at.
type Update struct {
	Content string
	Version int
}

// Config holds what's needed to open a collaborative session on a
// document.
type Config struct {
	DocID string
	Conn  Conn
	Cache cache.Store // optional; nil disables reconnect caching
}

// Session coordinates one open document: exactly one ot.Model, one
// localdoc.Document, and one transport connection, all serialized
// behind a single mutex so the three never observe each other's
// half-applied state.
type Session struct {
	docID    string
	clientID string
	conn     Conn
	store    cache.Store

	mu     sync.Mutex
	model  *ot.Model
	doc    *localdoc.Document
	closed bool

	subMu       sync.Mutex
	subscribers map[chan Update]struct{}
}

// New constructs a Session. It does not contact the server; call Join
// to request the document and start receiving updates.
func New(cfg Config) *Session {
	return &Session{
		docID:       cfg.DocID,
		clientID:    uuid.New().String(),
		conn:        cfg.Conn,
		store:       cfg.Cache,
		doc:         localdoc.New(""),
		subscribers: make(map[chan Update]struct{}),
	}
}

// Join requests the document from the server and blocks for its
// snapshot. Call Listen afterward (typically in its own goroutine) to
// start processing further messages.
func (s *Session) Join(ctx context.Context) error {
	env, err := wire.NewJoin(s.docID, s.clientID)
	if err != nil {
		return err
	}

	if err := s.conn.Send(env); err != nil {
		return fmt.Errorf("join %s: %w", s.docID, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		reply, err := s.conn.Receive()
		if err != nil {
			return fmt.Errorf("join %s: %w", s.docID, err)
		}

		payload, err := wire.Decode(reply)
		if err != nil {
			return err
		}

		doc, ok := payload.(wire.DocumentPayload)
		if !ok {
			// Server sent something else first (e.g. an error); handle
			// it through the normal dispatch path and keep waiting.
			s.dispatch(payload)

			continue
		}

		s.initialize(doc)

		return nil
	}
}

func (s *Session) initialize(doc wire.DocumentPayload) {
	s.mu.Lock()
	s.doc = localdoc.New(doc.Content)
	s.model = ot.NewModel(doc.Version)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveSnapshot(s.docID, doc.Version, doc.Content); err != nil {
			log.Printf("session %s: cache snapshot: %v", s.docID, err)
		}
	}

	s.publish()
}

// Listen reads messages from the connection until it errors or the
// session is closed. It's meant to run in its own goroutine for the
// lifetime of the session.
func (s *Session) Listen() error {
	for {
		env, err := s.conn.Receive()
		if err != nil {
			return fmt.Errorf("session %s: %w", s.docID, err)
		}

		payload, err := wire.Decode(env)
		if err != nil {
			log.Printf("session %s: %v", s.docID, err)

			continue
		}

		s.dispatch(payload)
	}
}

func (s *Session) dispatch(payload any) {
	switch p := payload.(type) {
	case wire.TransformsPayload:
		s.handleAction(s.withModel(func(m *ot.Model) ot.ActionRecord {
			return m.Receive(p.Transforms)
		}))
	case wire.CorrectionPayload:
		s.handleAction(s.withModel(func(m *ot.Model) ot.ActionRecord {
			return m.Correct(p.Version)
		}))
	case wire.ErrorPayload:
		log.Printf("session %s: server error %s: %s", s.docID, p.Code, p.Message)
	case wire.DocumentPayload:
		s.initialize(p)
	}
}

// SubmitLocalEdit feeds a user-typed edit into the OT core, applies it
// to the local document immediately, and transmits it (or buffers it)
// per the Model's protocol.
func (s *Session) SubmitLocalEdit(edit ot.Edit) error {
	action := s.withModel(func(m *ot.Model) ot.ActionRecord {
		return m.Submit(edit)
	})

	if action.Kind == ot.ActionError {
		return errors.New(action.Error)
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrSessionClosed
	}

	if err := s.doc.Apply(edit); err != nil {
		return fmt.Errorf("apply local edit: %w", err)
	}

	s.publish()

	return s.sendIfAny(action)
}

func (s *Session) handleAction(action ot.ActionRecord) {
	switch action.Kind {
	case ot.ActionError:
		log.Printf("session %s: protocol error: %s", s.docID, action.Error)

		return
	case ot.Nothing:
		return
	}

	if len(action.Apply) > 0 {
		if err := s.doc.ApplyAll(action.Apply); err != nil {
			log.Printf("session %s: %v", s.docID, err)

			return
		}

		s.publish()
	}

	if err := s.sendIfAny(action); err != nil {
		log.Printf("session %s: send: %v", s.docID, err)
	}
}

func (s *Session) sendIfAny(action ot.ActionRecord) error {
	if action.Send == nil {
		return nil
	}

	env, err := wire.NewSubmit(*action.Send)
	if err != nil {
		return err
	}

	return s.conn.Send(env)
}

// withModel runs fn against the Model under the session's single lock,
// which keeps the Model, the local document, and any cache writes
// consistent with each other.
func (s *Session) withModel(fn func(*ot.Model) ot.ActionRecord) ot.ActionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model == nil {
		return ot.ActionRecord{Kind: ot.ActionError, Error: "session not joined"}
	}

	return fn(s.model)
}

// Content returns the document's current local content.
func (s *Session) Content() string {
	return s.doc.Content()
}

// Version returns the Model's last-known server version.
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model == nil {
		return 0
	}

	return s.model.Version()
}

// Subscribe registers ch to receive an Update every time the document's
// content changes, whether from a local edit or an applied remote one.
// Unsubscribe must be called to release ch.
func (s *Session) Subscribe(ch chan Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the fan-out set.
func (s *Session) Unsubscribe(ch chan Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	delete(s.subscribers, ch)
}

func (s *Session) publish() {
	update := Update{Content: s.doc.Content(), Version: s.Version()}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- update:
		default:
			// Slow subscriber: drop rather than block the session.
		}
	}
}

// Close closes the underlying connection and caches a final snapshot.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	content := s.doc.Content()

	version := 0
	if s.model != nil {
		version = s.model.Version()
	}

	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveSnapshot(s.docID, version, content); err != nil {
			log.Printf("session %s: cache snapshot on close: %v", s.docID, err)
		}
	}

	return s.conn.Close()
}

// DocID returns the document ID this session is open on.
func (s *Session) DocID() string {
	return s.docID
}

// ClientID returns the identifier this session presented when joining.
func (s *Session) ClientID() string {
	return s.clientID
}
