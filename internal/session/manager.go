// Package session holds per-conversation resolution state.
//
// Each conversation is processed one turn at a time; the manager only guards
// the map itself against concurrent conversations.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/akazawan/libris/pkg/models"
)

// Session pairs a conversation id with its resolution state.
type Session struct {
	ID    string
	State *models.ResolutionState
}

// Manager owns all live sessions. State has no cross-session visibility.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Begin starts a fresh session over a new candidate set. Any previous state
// under the same conversation is discarded.
func (m *Manager) Begin(conversationID string, candidates []models.CatalogRecord) *Session {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	sess := &Session{
		ID:    conversationID,
		State: models.NewResolutionState(candidates),
	}
	m.mu.Lock()
	m.sessions[conversationID] = sess
	m.mu.Unlock()
	return sess
}

// Get returns the session for a conversation id.
func (m *Manager) Get(conversationID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[conversationID]
	return sess, ok
}

// End discards a session once its action completed.
func (m *Manager) End(conversationID string) {
	m.mu.Lock()
	delete(m.sessions, conversationID)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
