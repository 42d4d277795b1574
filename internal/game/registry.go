package game

import (
	"log"
	"sync"
)

// Registry is the process-wide map from game code to live session.
// Sessions are created lazily on first connection and removed by the
// clock sweep once their destruction deadline passes. Construct one per
// process (or per test); there is no package-level instance.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for code, creating it on first use.
func (r *Registry) GetOrCreate(code string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[code]; ok {
		return s
	}
	s := NewSession(code)
	r.sessions[code] = s
	log.Printf("new session created: %s", code)
	return s
}

// Get returns the session for code, or nil.
func (r *Registry) Get(code string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[code]
}

func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, code)
}

// ForEach visits a snapshot of the current sessions. fn runs outside
// the registry lock so it may take session locks freely.
func (r *Registry) ForEach(fn func(*Session)) {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
