package database

import (
	"sync"
	"time"

	"github.com/ds124wfegd/electrorescue/internal/entity"
)

type SessionRepository interface {
	Save(session *entity.Session) error
	FindByID(id string) (*entity.Session, error)
	Sweep(now time.Time) int
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
	ttl      time.Duration
}
