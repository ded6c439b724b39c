package bot

import (
	"sync"
	"time"
)

// State is the position of a goal-creation dialogue.
type State int

const (
	// StateAwaitingCategory waits for a numeric category selection.
	StateAwaitingCategory State = iota + 1
	// StateAwaitingTitle waits for the goal title.
	StateAwaitingTitle
	// StateAwaitingDescription waits for the goal description.
	StateAwaitingDescription
	// StateAwaitingDueDate waits for a YYYY-MM-DD deadline, then commits.
	StateAwaitingDueDate
)

// Session holds one identity's in-progress goal-creation dialogue. Sessions
// are volatile: they live in process memory and do not survive restarts.
type Session struct {
	State         State
	AccountID     int64
	ChatID        int64
	Offered       []int64 // category ids listed at /create
	CategoryID    int64
	CategoryTitle string
	Title         string
	Description   string
	StartedAt     time.Time
}

// Offers reports whether the category id was listed when the session began.
func (s *Session) Offers(categoryID int64) bool {
	for _, id := range s.Offered {
		if id == categoryID {
			return true
		}
	}
	return false
}

// SessionStore keeps in-progress dialogues keyed by Telegram user id, one
// session per identity. The map is mutex-guarded; state transitions for a
// given identity are additionally serialized by the single poll loop, so a
// reimplementation that processes chats concurrently must keep per-key
// exclusion around every read-modify-write.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

// Begin installs a fresh session for the identity, replacing any prior one.
func (s *SessionStore) Begin(userID int64, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.StartedAt = time.Now()
	s.sessions[userID] = session
}

// Get returns the identity's active session, if any.
func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Clear removes the identity's session. Clearing an absent session is a
// no-op.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
