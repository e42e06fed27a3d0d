package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftdoc/client/internal/cache"
)

// Dialer opens a Conn to the server for a given document. transport.Dial
// adapted to this signature is the production implementation; tests
// supply a fake that returns an in-memory Conn.
type Dialer func(ctx context.Context, docID string) (Conn, error)

// Manager owns every document the client currently has open, for
// example one per open editor tab.
type Manager struct {
	dial  Dialer
	store cache.Store

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Dial  Dialer
	Cache cache.Store
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		dial:     cfg.Dial,
		store:    cfg.Cache,
		sessions: make(map[string]*Session),
	}
}

// Open returns the existing session for docID, or dials the server and
// joins a new one. The returned session is already joined; callers
// still need to run Listen in a goroutine to keep receiving updates.
func (m *Manager) Open(ctx context.Context, docID string) (*Session, error) {
	m.mu.RLock()
	existing, ok := m.sessions[docID]
	m.mu.RUnlock()

	if ok {
		return existing, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[docID]; ok {
		return existing, nil
	}

	conn, err := m.dial(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", docID, err)
	}

	sess := New(Config{DocID: docID, Conn: conn, Cache: m.store})

	if err := sess.Join(ctx); err != nil {
		return nil, fmt.Errorf("open %s: %w", docID, err)
	}

	m.sessions[docID] = sess

	return sess, nil
}

// Get returns the session for docID if it's already open, or nil.
func (m *Manager) Get(docID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessions[docID]
}

// Close closes and forgets the session for docID.
func (m *Manager) Close(docID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[docID]

	if !ok {
		m.mu.Unlock()

		return nil
	}

	delete(m.sessions, docID)
	m.mu.Unlock()

	return sess.Close()
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))

	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}

	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var lastErr error

	for _, sess := range sessions {
		if err := sess.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Count returns the number of currently open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
