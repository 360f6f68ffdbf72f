package exercise

import (
	"sync"
	"time"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
)

// Session is one pass through a concept's exercise set.
type Session struct {
	ID           string                `json:"id"`
	ConceptID    curriculum.ConceptID  `json:"concept_id"`
	Exercises    []curriculum.Exercise `json:"-"`
	Current      int                   `json:"current"`
	AttemptsLeft int                   `json:"attempts_left"`
	ScoreAdded   int                   `json:"score_added"`
	Finished     bool                  `json:"finished"`
	StartedAt    time.Time             `json:"started_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	FinishedAt   *time.Time            `json:"finished_at,omitempty"`
}

// Problem returns the current problem text, or "" once the session is finished.
func (s *Session) Problem() string {
	if s.Finished || s.Current >= len(s.Exercises) {
		return ""
	}
	return s.Exercises[s.Current].Problem
}

// Store persists exercise sessions for the lifetime of the process.
type Store interface {
	Save(s Session) error
	Get(id string) (Session, error)
	Delete(id string) error
	List() []Session
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

func (s *MemoryStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
