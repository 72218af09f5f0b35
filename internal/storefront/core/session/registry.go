package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// Limits bounds the registry. Zero values disable the corresponding limit.
type Limits struct {
	// IdleTTL expires sessions that were not looked up for this long.
	IdleTTL time.Duration
	// MaxSessions caps live sessions; the least recently used one is evicted
	// to make room.
	MaxSessions int
}

var DefaultLimits = Limits{IdleTTL: 30 * time.Minute, MaxSessions: 10_000}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps the live sessions in memory. Sessions are lost on restart.
// A session with a submission in flight is never evicted.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	orders   ports.OrderService
	opts     []checkout.Option
	limits   Limits
	newID    func() string
	now      func() time.Time
}

// NewRegistry creates sessions wired to orders; opts are applied to every
// session's orchestrator.
func NewRegistry(orders ports.OrderService, limits Limits, opts ...checkout.Option) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		orders:   orders,
		opts:     opts,
		limits:   limits,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Get returns a live session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expiredLocked(e, now) {
		delete(r.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

func (r *Registry) Create() *Session {
	s := New(r.newID(), r.orders, r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.limits.MaxSessions > 0 && len(r.sessions) >= r.limits.MaxSessions {
		r.sweepLocked(now)
		for len(r.sessions) >= r.limits.MaxSessions {
			if !r.evictOldestLocked() {
				break
			}
		}
	}
	r.sessions[s.ID()] = &entry{session: s, lastSeen: now}
	return s
}

// GetOrCreate returns the session for id, or a new one when id is empty or
// unknown. The bool reports whether a session was created.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

// Detached returns an empty session that is not registered, for read-only
// requests from unknown shoppers.
func (r *Registry) Detached() *Session {
	return New("", r.orders, r.opts...)
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops every expired session and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.limits.IdleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.DebugContext(ctx, "expired idle sessions", "removed", n, "live", r.Len())
			}
		}
	}
}

func (r *Registry) expiredLocked(e *entry, now time.Time) bool {
	if r.limits.IdleTTL <= 0 || now.Sub(e.lastSeen) <= r.limits.IdleTTL {
		return false
	}
	return !e.session.checkout.IsSubmitting()
}

func (r *Registry) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range r.sessions {
		if r.expiredLocked(e, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) evictOldestLocked() bool {
	var oldestID string
	var oldest time.Time
	for id, e := range r.sessions {
		if e.session.checkout.IsSubmitting() {
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID == "" {
		return false
	}
	delete(r.sessions, oldestID)
	return true
}
