package database

import (
	"time"

	"github.com/ds124wfegd/electrorescue/internal/entity"
)

// NewSessionRepository keeps sessions in memory only. Sessions untouched for
// longer than ttl are removed by Sweep; ttl <= 0 disables eviction.
func NewSessionRepository(ttl time.Duration) SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*entity.Session),
		ttl:      ttl,
	}
}

func (r *memorySessionRepository) Save(session *entity.Session) error {
	if session == nil || session.ID == "" {
		return entity.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *memorySessionRepository) FindByID(id string) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Sweep evicts idle sessions. Sessions still analyzing are kept.
func (r *memorySessionRepository) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.State == entity.StateAnalyzing {
			continue
		}
		if now.Sub(s.UpdatedAt) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
