package session

import (
	"sync"
	"time"

	"github.com/avrorra/storebot/internal/checkout"
)

// Registry stores sessions keyed by user ID and serializes all access
// to a given user's session.
type Registry interface {
	// Update runs fn with the user's session under that user's lock,
	// creating the session on first contact. Updates for different
	// users proceed independently.
	Update(userID int64, fn func(*Session))

	// Len returns the number of live sessions.
	Len() int

	// Stats returns a snapshot of sessions grouped by checkout state.
	Stats() map[checkout.State]int
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// MemoryRegistry is the in-process Registry implementation. Sessions
// are intentionally not persisted; a restart drops all conversational
// state.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[int64]*entry
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[int64]*entry)}
}

func (r *MemoryRegistry) get(userID int64) *entry {
	r.mu.RLock()
	e, ok := r.entries[userID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[userID]; ok {
		return e
	}
	e = &entry{session: newSession(userID)}
	r.entries[userID] = e
	return e
}

// Update implements Registry.
func (r *MemoryRegistry) Update(userID int64, fn func(*Session)) {
	e := r.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.LastSeen = time.Now()
	fn(e.session)
}

// Len implements Registry.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Stats implements Registry.
func (r *MemoryRegistry) Stats() map[checkout.State]int {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	stats := make(map[checkout.State]int)
	for _, e := range entries {
		e.mu.Lock()
		stats[e.session.Checkout]++
		e.mu.Unlock()
	}
	return stats
}

// Sweep removes sessions idle for longer than ttl. Sessions in the
// middle of a checkout dialogue are kept regardless of idle time so a
// slow user is not silently dropped mid-conversation. Returns the
// number of evicted sessions.
func (r *MemoryRegistry) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for userID, e := range r.entries {
		e.mu.Lock()
		idle := e.session.LastSeen.Before(cutoff) && !e.session.InCheckout()
		e.mu.Unlock()
		if idle {
			delete(r.entries, userID)
			evicted++
		}
	}
	return evicted
}
