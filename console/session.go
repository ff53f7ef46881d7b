package console

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/pulseboard/analytics"
)

// Session is the UI state of one browser: both forms, the status banner and
// the last stats result that was rendered.
type Session struct {
	ID     string
	Stats  Form
	Events Form
	Banner BannerState

	mu         sync.Mutex
	lastQuery  analytics.StatsQuery
	lastResult *analytics.StatsResult
	lastSeen   time.Time
}

// LastResult returns the most recent successful stats result and the query
// that produced it.
func (s *Session) LastResult() (analytics.StatsQuery, *analytics.StatsResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery, s.lastResult, s.lastResult != nil
}

func (s *Session) setLastResult(q analytics.StatsQuery, res *analytics.StatsResult) {
	s.mu.Lock()
	s.lastQuery = q
	s.lastResult = res
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// close stops pending timers so nothing fires against an evicted session.
func (s *Session) close() {
	s.Banner.Hide()
}

// Sessions is an in-memory registry of console sessions keyed by id.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
}

// NewSessions creates a registry that forgets sessions idle for longer than
// idleTTL once Sweep runs.
func NewSessions(idleTTL time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
	}
}

// Resolve returns the session for id, creating a fresh one (with a new id)
// when id is empty or unknown.
func (r *Sessions) Resolve(id string) *Session {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && id != "" {
		s.touch(now)
		return s
	}
	s := &Session{ID: uuid.New().String(), lastSeen: now}
	r.sessions[s.ID] = s
	return s
}

// Lookup returns the live session for id without creating one.
func (r *Sessions) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(time.Now())
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (r *Sessions) Sweep() int {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval. Returns a stop function.
func (r *Sessions) StartSweeper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
