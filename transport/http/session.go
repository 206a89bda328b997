package http

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionManager tracks Streamable HTTP sessions and their SSE streams.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	now      func() time.Time
}

// Session represents an MCP session
type Session struct {
	ID              string
	Created         time.Time
	LastSeen        time.Time
	ProtocolVersion string
	Initialized     bool
	Transport       *StreamableHTTPTransport
}

// NewSessionManager creates a new session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// CreateSession registers a fresh session and returns its ID.
func (sm *SessionManager) CreateSession() string {
	id := uuid.NewString()
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	sm.sessions[id] = &Session{ID: id, Created: now, LastSeen: now}
	return id
}

// TouchSession refreshes LastSeen and reports whether the session exists.
func (sm *SessionManager) TouchSession(sessionID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[sessionID]
	if ok {
		session.LastSeen = sm.now()
	}
	return ok
}

func (sm *SessionManager) HasSession(sessionID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.sessions[sessionID]
	return ok
}

func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *SessionManager) SetProtocolVersion(sessionID, version string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if session, ok := sm.sessions[sessionID]; ok {
		session.ProtocolVersion = version
	}
}

func (sm *SessionManager) GetProtocolVersion(sessionID string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[sessionID]
	if !ok {
		return "", false
	}
	return session.ProtocolVersion, true
}

func (sm *SessionManager) MarkInitialized(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if session, ok := sm.sessions[sessionID]; ok {
		session.Initialized = true
	}
}

// SetTransport binds the SSE stream of a session, closing any previous one.
// It returns false when the session is gone.
func (sm *SessionManager) SetTransport(sessionID string, transport *StreamableHTTPTransport) bool {
	sm.mu.Lock()
	session, ok := sm.sessions[sessionID]
	var previous *StreamableHTTPTransport
	if ok {
		previous = session.Transport
		session.Transport = transport
		session.LastSeen = sm.now()
	}
	sm.mu.Unlock()

	if previous != nil && previous != transport {
		previous.Close()
	}
	return ok
}

func (sm *SessionManager) GetTransport(sessionID string) (*StreamableHTTPTransport, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[sessionID]
	if !ok || session.Transport == nil {
		return nil, false
	}
	return session.Transport, true
}

// ClearTransportIfMatch unbinds transport if it is still the active stream.
func (sm *SessionManager) ClearTransportIfMatch(sessionID string, transport *StreamableHTTPTransport) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if session, ok := sm.sessions[sessionID]; ok && session.Transport == transport {
		session.Transport = nil
	}
}

// SessionIDsWithTransport lists sessions that have an open SSE stream.
func (sm *SessionManager) SessionIDsWithTransport() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	var ids []string
	for id, session := range sm.sessions {
		if session.Transport != nil && !session.Transport.IsClosed() {
			ids = append(ids, id)
		}
	}
	return ids
}

// RemoveSession removes a session
func (sm *SessionManager) RemoveSession(sessionID string) {
	sm.mu.Lock()
	session, ok := sm.sessions[sessionID]
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if ok && session.Transport != nil {
		session.Transport.Close()
	}
}

// CleanupSessions removes sessions idle for longer than timeout. Sessions
// holding an open stream are kept. It returns the number removed.
func (sm *SessionManager) CleanupSessions(timeout time.Duration) int {
	sm.mu.Lock()
	now := sm.now()
	var expired []*Session
	for id, session := range sm.sessions {
		if session.Transport != nil && !session.Transport.IsClosed() {
			continue
		}
		if now.Sub(session.LastSeen) > timeout {
			expired = append(expired, session)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for _, session := range expired {
		if session.Transport != nil {
			session.Transport.Close()
		}
	}
	return len(expired)
}
