package server

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/aristath/bankdash/internal/events"
	"github.com/aristath/bankdash/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// OrchestratorFactory builds the orchestrator behind a new session.
type OrchestratorFactory func() *dashboard.Orchestrator

// Session is one browser's dashboard. Its version is bumped on every event the
// orchestrator emits and backs the state ETag.
type Session struct {
	ID           string
	Orchestrator *dashboard.Orchestrator

	limiter     *rate.Limiter
	version     atomic.Uint64
	lastActive  atomic.Int64
	unsubscribe func()
}

// Version returns the current state version.
func (s *Session) Version() uint64 {
	return s.version.Load()
}

// LastActive returns the time of the last request that touched the session.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Bus returns the session's event bus.
func (s *Session) Bus() *events.Bus {
	return s.Orchestrator.Events().Bus()
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// SessionOptions tunes per-session request limiting.
type SessionOptions struct {
	Rate  float64
	Burst int
}

// SessionRegistry owns every live session.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  OrchestratorFactory
	opts     SessionOptions
	now      func() time.Time
	log      zerolog.Logger
}

// NewSessionRegistry creates an empty registry. A non-positive rate disables limiting.
func NewSessionRegistry(factory OrchestratorFactory, opts SessionOptions, log zerolog.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		factory:  factory,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "sessions").Logger(),
	}
}

// Create starts a new session with a fresh orchestrator.
func (r *SessionRegistry) Create() *Session {
	s := &Session{
		ID:           uuid.NewString(),
		Orchestrator: r.factory(),
		limiter:      r.newLimiter(),
	}
	s.touch(r.now())
	s.unsubscribe = s.Bus().SubscribeAll(func(events.Event) {
		s.version.Add(1)
	})

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetSessionsActive(n)
	r.log.Info().Str("session_id", s.ID).Int("sessions", n).Msg("Session created")
	return s
}

func (r *SessionRegistry) newLimiter() *rate.Limiter {
	if r.opts.Rate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := r.opts.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(r.opts.Rate), burst)
}

// Get returns the session and marks it active.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Remove drops a session. It reports whether the session existed.
func (r *SessionRegistry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.unsubscribe()
	metrics.SetSessionsActive(n)
	r.log.Info().Str("session_id", id).Int("sessions", n).Msg("Session removed")
	return true
}

// Reap removes sessions idle for longer than idle and returns how many were removed.
func (r *SessionRegistry) Reap(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.RLock()
	var stale []string
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if r.Remove(id) {
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the live session IDs, sorted.
func (r *SessionRegistry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
