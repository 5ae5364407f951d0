// Package registry holds the authoritative mapping from connection id to
// session. It is the single source of truth for who is online.
package registry

import (
	"sync"
	"time"

	"switchboard-chat-server/domain"
)

// Registry is a mutex-guarded session table preserving join order.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	order    []string
}

func New() *Registry {
	return &Registry{
		sessions: make(map[string]domain.Session),
	}
}

// Register creates a session for id. If the id already holds a session the
// stale entry is overwritten and domain.ErrDuplicateConnection is returned
// alongside the fresh session, so the caller can warn without losing the join.
func (r *Registry) Register(id, username string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := domain.Session{ID: id, Username: username, JoinedAt: time.Now()}

	if _, exists := r.sessions[id]; exists {
		r.sessions[id] = s
		return s, domain.ErrDuplicateConnection
	}

	r.sessions[id] = s
	r.order = append(r.order, id)
	return s, nil
}

// Remove deletes the session for id. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return domain.Session{}, false
	}

	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s, true
}

func (r *Registry) Get(id string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[id]
	return s, exists
}

// List returns a point-in-time snapshot of all sessions in join order.
func (r *Registry) List() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
