// Package session owns the live analysis sessions. Each session holds one
// move tree plus its cursor behind a single mutator lock, which models the
// cooperative single-owner discipline the tree requires: no two structural
// mutations ever interleave.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shashguru/gametree/internal/tree"
)

// Session is the owned-state container for one loaded game.
type Session struct {
	ID      string
	Tree    *tree.Tree
	Headers map[string]string // tag pairs from the loaded notation, if any

	mu        sync.Mutex
	createdAt time.Time
	lastSeen  time.Time
}

// Locker exposes the session's mutator lock, e.g. for the evaluation
// orchestrator's result merges.
func (s *Session) Locker() sync.Locker {
	return &s.mu
}

// Do runs fn with exclusive access to the session's tree.
func (s *Session) Do(fn func(t *tree.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Tree)
}

// Registry tracks live sessions by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// Create registers a new session around an already-built tree.
func (r *Registry) Create(t *tree.Tree, headers map[string]string) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Tree:      t,
		Headers:   headers,
		createdAt: now,
		lastSeen:  now,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session and refreshes its idle clock.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.lastSeen = time.Now()
		s.mu.Unlock()
	}
	return s, ok
}

// Delete is the hard reset for one session: the tree is discarded wholesale
// and any in-flight evaluation state for it is abandoned implicitly.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		stale := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until the context is canceled.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.log.Info().Int("removed", n).Int("live", r.Len()).Msg("swept idle sessions")
			}
		}
	}
}
