package session

import (
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxSessions = 256

// Registry maps browser session ids to sessions. The least recently used
// session is dropped when full, and its in-flight upload is cancelled.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	cache, err := lru.NewWithEvict[string, *Session](size, func(_ string, s *Session) {
		s.Close()
	})
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache}, nil
}

// Get returns the session for id, creating a fresh one with a new id when id
// is empty or unknown. created is true when a new session was made.
func (r *Registry) Get(id string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		if s, ok := r.cache.Get(id); ok {
			return s, false
		}
	}
	s = New(uuid.NewString())
	r.cache.Add(s.ID, s)
	return s, true
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
