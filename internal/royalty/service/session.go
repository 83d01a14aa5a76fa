package service

import (
	"sync"

	"github.com/smallpress/folio/internal/royalty/domain"
	"github.com/smallpress/folio/internal/royalty/engine"
)

// Session is one title's loaded engine plus its edit debouncer. The engine
// is single-threaded; Mu serializes every access to it.
type Session struct {
	Mu       sync.Mutex
	Engine   *engine.Engine
	Debounce *engine.Debouncer
}

// SessionCache holds loaded allocation sessions per title. Eviction is the
// explicit invalidation trigger for cached amounts: any change to pricing
// or printing cost drops the session, forcing a rebuild on next access.
type SessionCache struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[int64]*Session)}
}

// ProvideInvalidator exposes the cache to producers of pricing changes.
func ProvideInvalidator(c *SessionCache) domain.CacheInvalidator {
	return c
}

func (c *SessionCache) Get(titleID int64) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[titleID]
	return s, ok
}

func (c *SessionCache) Put(titleID int64, s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.sessions[titleID]; ok && old.Debounce != nil {
		old.Debounce.Stop()
	}
	c.sessions[titleID] = s
}

// InvalidateTitle drops the title's session, if any.
func (c *SessionCache) InvalidateTitle(titleID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[titleID]; ok {
		if s.Debounce != nil {
			s.Debounce.Stop()
		}
		delete(c.sessions, titleID)
	}
}
