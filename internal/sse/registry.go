package sse

import "sync"

// Registry is the process-wide connection table: one live push channel per
// user. It is created once at boot and drained at shutdown; everything else
// reaches it through the SseServer.
type Registry struct {
	conns sync.Map // userID -> Conn
}

func NewRegistry() *Registry { return &Registry{} }

// Add binds c as the single channel for userID. A previously registered
// channel is completed and replaced.
func (r *Registry) Add(userID string, c Conn) {
	if prev, loaded := r.conns.Swap(userID, c); loaded {
		prev.(Conn).Close(OutcomeComplete)
	}
}

func (r *Registry) Get(userID string) (Conn, bool) {
	v, ok := r.conns.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(Conn), true
}

// Remove deletes and completes whatever channel is registered for userID.
// Idempotent.
func (r *Registry) Remove(userID string) {
	if v, ok := r.conns.LoadAndDelete(userID); ok {
		v.(Conn).Close(OutcomeComplete)
	}
}

// removeIf deletes the entry only while it still points at c, so a dying
// connection cannot tear down the channel that replaced it.
func (r *Registry) removeIf(userID string, c Conn) bool {
	return r.conns.CompareAndDelete(userID, c)
}

// Range iterates a snapshot of the table; concurrent Add/Remove during the
// walk is fine.
func (r *Registry) Range(f func(userID string, c Conn) bool) {
	r.conns.Range(func(k, v any) bool {
		return f(k.(string), v.(Conn))
	})
}

func (r *Registry) Len() int {
	n := 0
	r.conns.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Drain completes every open channel. Called once at shutdown.
func (r *Registry) Drain() {
	r.conns.Range(func(k, v any) bool {
		r.conns.Delete(k)
		v.(Conn).Close(OutcomeComplete)
		return true
	})
}
