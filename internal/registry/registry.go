// Package registry tracks which connections are currently open for each
// participant identity. Identity, not connection, is the durable key: one
// identity may hold several connections (tabs) and may reconnect mid-match.
package registry

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is one live outbound channel to a participant. Send must not block
// the caller; implementations queue and deliver in order.
type Conn interface {
	Send(v any) error
}

type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}

	// invoked after the last connection for an identity is removed
	onUnreachable func(identity string)
}

func New() *Registry {
	return &Registry{conns: make(map[string]map[Conn]struct{})}
}

// SetUnreachableHandler installs the callback fired when an identity loses
// its last connection. Must be set before connections are accepted.
func (r *Registry) SetUnreachableHandler(fn func(identity string)) {
	r.mu.Lock()
	r.onUnreachable = fn
	r.mu.Unlock()
}

// AllocateIdentity mints a fresh identity for a connection that arrived
// without one (the no-external-auth path).
func (r *Registry) AllocateIdentity() string {
	return uuid.NewString()
}

func (r *Registry) Register(identity string, c Conn) {
	if identity == "" || c == nil {
		return
	}
	r.mu.Lock()
	set, ok := r.conns[identity]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[identity] = set
	}
	set[c] = struct{}{}
	r.mu.Unlock()
}

// Unregister removes a connection. Removing the last connection for an
// identity fires the unreachable handler outside the registry lock.
func (r *Registry) Unregister(identity string, c Conn) {
	if identity == "" || c == nil {
		return
	}
	var fire func(string)
	r.mu.Lock()
	if set, ok := r.conns[identity]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.conns, identity)
			fire = r.onUnreachable
		}
	}
	r.mu.Unlock()
	if fire != nil {
		fire(identity)
	}
}

// ConnectionsFor returns a snapshot of the open connections for identity.
func (r *Registry) ConnectionsFor(identity string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.conns[identity]
	if !ok {
		return nil
	}
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Reachable reports whether identity has at least one open connection.
func (r *Registry) Reachable(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[identity]) > 0
}
