package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/search"
	"github.com/wricardo/astar-visualizer/board/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrNoSessionIDs         = errors.New("no free session IDs")
)

// randomIDAttempts bounds the random draws before falling back to a scan
const randomIDAttempts = 32

// Manager handles board session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	engine   []search.Option
	mu       sync.RWMutex
}

// NewManager creates a new session manager. The options are applied to the
// search engine of every session it creates.
func NewManager(engineOptions ...search.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		engine:   engineOptions,
	}
}

// Create creates a new session with the given ID and layout. An empty id
// gets a generated one.
func (m *Manager) Create(id, layoutID string, l *layout.Layout) (*service.Session, error) {
	if strings.ContainsAny(id, " /\\?#") {
		return nil, ErrInvalidSessionID
	}
	if l == nil {
		return nil, fmt.Errorf("%w: nil layout", layout.ErrInvalidLayout)
	}

	g, err := l.Grid()
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if id, err = m.generateSessionID(); err != nil {
			return nil, err
		}
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:        id,
		LayoutID:  layoutID,
		Layout:    l,
		Grid:      g,
		Engine:    search.NewEngine(m.engine...),
		CreatedAt: now,
	}
	session.Touch(now)

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, layoutID string, l *layout.Layout) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, layoutID, l)
	}

	return nil, err
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}
	session.Touch(time.Now())
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration. Sessions with a search in flight are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) && !session.Busy() {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random unused 4-character session ID.
// When random draws keep colliding it scans the ID space in order.
// Callers hold m.mu.
func (m *Manager) generateSessionID() (string, error) {
	bytes := make([]byte, 2)
	for i := 0; i < randomIDAttempts; i++ {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id, nil
		}
	}

	for n := 0; n <= 0xffff; n++ {
		id := fmt.Sprintf("%04x", n)
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	return "", ErrNoSessionIDs
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
