package staging

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager is the in-memory registry of open staging sessions. Sessions live
// until explicitly closed; a single-user tool needs no eviction policy.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session registry over the given store.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		logger:   logger.With("system", "staging"),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open creates and registers a new session.
func (m *Manager) Open() *Session {
	session := newSession(m.store)

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	m.logger.Info("session opened", "id", session.ID())
	return session
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close removes a session from the registry. A session with uncommitted
// changes refuses to close unless force is set; the refusal leaves the
// session and its ledgers intact.
func (m *Manager) Close(id uuid.UUID, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	if !force && session.HasPendingChanges() {
		return ErrPendingChanges
	}

	pending := session.Close()
	delete(m.sessions, id)

	m.logger.Info("session closed", "id", id, "discarded_pending", pending)
	return nil
}
