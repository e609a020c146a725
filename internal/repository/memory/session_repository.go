package memory

import (
	"time"

	"ai-tutor-be/pkg/tutor/session"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live session machines in memory with a sliding TTL
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl, cleanupInterval time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(m *session.Machine) {
	r.cache.Set(m.ID(), m, cache.DefaultExpiration)
}

// Get returns the machine and extends its expiry
func (r *SessionRepository) Get(sessionID string) (*session.Machine, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	m := x.(*session.Machine)
	r.cache.Set(sessionID, m, cache.DefaultExpiration)
	return m, true
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
