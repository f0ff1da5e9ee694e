// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/colorparty/network"
)

// Session is one live connection. After a successful bind it carries the
// (room, player) identity the connection acts as.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	roomCode string
	playerID string
	mutex    sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Bind associates the session with a (room, player) pair for the lifetime of
// the connection.
func (s *Session) Bind(roomCode, playerID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomCode = roomCode
	s.playerID = playerID
}

// Identity returns the bound (room, player) pair; empty strings if unbound.
func (s *Session) Identity() (roomCode, playerID string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode, s.playerID
}

func (s *Session) Bound() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode != ""
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByPlayer returns the sessions currently bound to a (room, player) pair.
// More than one can exist briefly when a player reconnects before the old
// connection's read loop has noticed the drop.
func (m *Manager) GetByPlayer(roomCode, playerID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		rc, pid := session.Identity()
		if rc == roomCode && pid == playerID {
			result = append(result, session)
		}
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
