package app

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/markthomas93/WBBMTT/internal/domain"
)

// SessionInfo describes a live session for listings.
type SessionInfo struct {
	ID           uuid.UUID `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	ManualClear  bool      `json:"manual_clear"`
	ShakeEnabled bool      `json:"shake_enabled"`
}

// Registry indexes live sessions. Sessions never share state; the
// registry only bounds how many run at once.
type Registry struct {
	clock    clockwork.Clock
	limit    int
	observer Observer

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Visualizer
}

// NewRegistry creates a registry holding at most limit sessions.
// A non-positive limit means unbounded.
func NewRegistry(clock clockwork.Clock, limit int, observer Observer) *Registry {
	return &Registry{
		clock:    clock,
		limit:    limit,
		observer: observerOrNop(observer),
		sessions: make(map[uuid.UUID]*Visualizer),
	}
}

// Open starts a new session under id.
func (r *Registry) Open(id uuid.UUID, opts Options, logger *slog.Logger, sink FrameSink) (*Visualizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return nil, fmt.Errorf("session %s already open", id)
	}
	if r.limit > 0 && len(r.sessions) >= r.limit {
		return nil, fmt.Errorf("open session (max %d): %w", r.limit, domain.ErrSessionLimit)
	}

	v := NewVisualizer(id, opts, r.clock, logger, sink, r.observer)
	r.sessions[id] = v
	r.observer.SessionsActive(len(r.sessions))
	return v, nil
}

// Close removes the session and stops it. Unknown ids are ignored.
func (r *Registry) Close(id uuid.UUID) {
	r.mu.Lock()
	v, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return
	}
	r.observer.SessionsActive(n)
	v.Stop()
}

// Get looks up a live session.
func (r *Registry) Get(id uuid.UUID) (*Visualizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return v, nil
}

// List returns the live sessions, oldest first.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	infos := make([]SessionInfo, 0, len(r.sessions))
	for _, v := range r.sessions {
		infos = append(infos, SessionInfo{
			ID:           v.ID(),
			StartedAt:    v.StartedAt(),
			ManualClear:  v.Options().ManualClear,
			ShakeEnabled: v.ShakeEnabled(),
		})
	}
	r.mu.RUnlock()

	slices.SortFunc(infos, func(a, b SessionInfo) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return infos
}

// Available reports whether another session could be opened now.
func (r *Registry) Available() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limit <= 0 || len(r.sessions) < r.limit
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StopAll stops and removes every session.
func (r *Registry) StopAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Visualizer)
	r.mu.Unlock()

	for _, v := range sessions {
		v.Stop()
	}
	r.observer.SessionsActive(0)
	slog.Info("Sessions stopped", "count", len(sessions))
}
