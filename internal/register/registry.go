package register

import "sync"

// Registry hands out sessions keyed by tenant and register id,
// creating them lazily on first use.  Sessions are never persisted;
// restarting the process starts every register with a fresh empty
// ticket.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for the tenant/register pair, creating an
// open one with an empty ticket when none exists yet.
func (r *Registry) Get(tenantID, registerID string) *Session {
	key := tenantID + ":" + registerID
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := NewSession(tenantID, registerID)
	r.sessions[key] = s
	return s
}

// Drop discards a register's session, losing any open ticket.  Used
// when a register is closed for the day.
func (r *Registry) Drop(tenantID, registerID string) {
	key := tenantID + ":" + registerID
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}
