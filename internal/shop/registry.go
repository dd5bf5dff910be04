package shop

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry keeps one Storefront per browser session and drops sessions that
// have been idle for too long.
type Registry struct {
	newFront func() *Storefront
	idle     time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	front    *Storefront
	lastSeen time.Time
}

func NewRegistry(newFront func() *Storefront, idle time.Duration) *Registry {
	return &Registry{
		newFront: newFront,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

// Get returns the storefront of the session, creating it on first use.
func (r *Registry) Get(sessionID string) *Storefront {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sessionID]
	if !ok {
		e = &registryEntry{front: r.newFront()}
		r.sessions[sessionID] = e
		slog.Debug("Storefront session created", "sessions", len(r.sessions))
	}
	e.lastSeen = r.now()
	return e.front
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes and forgets sessions idle since before now minus the idle
// window. It returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []*Storefront
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.front)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	return len(stale)
}

// Run sweeps every minute until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("Expired idle storefront sessions", "count", n)
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*registryEntry)
	r.mu.Unlock()
	for _, e := range sessions {
		e.front.Close()
	}
}
