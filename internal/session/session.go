// Package session keeps one document store and one preview style per
// browsing session, in memory only.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// StyleListener is notified after every style change. It runs on the
// changing goroutine and must not block.
type StyleListener func(style types.Style)

// Session is the state of one browsing session.
type Session struct {
	ID    uuid.UUID
	Store *store.Store

	mu        sync.RWMutex
	style     types.Style
	listeners map[int]StyleListener
	nextID    int
}

// Style returns the current preview style.
func (s *Session) Style() types.Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// SetStyle overlays the non-empty fields of patch and returns the result.
func (s *Session) SetStyle(patch types.Style) types.Style {
	s.mu.Lock()
	s.style = s.style.Merge(patch)
	style := s.style
	listeners := make([]StyleListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(style)
	}
	return style
}

// SubscribeStyle registers l for style changes.
func (s *Session) SubscribeStyle(l StyleListener) (unsubscribe func()) {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]StyleListener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Gauge tracks the number of live sessions.
type Gauge interface {
	Set(float64)
}

// Config holds registry settings.
type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	DefaultStyle    types.Style
	StoreOptions    []store.Option
	Gauge           Gauge
}

// Registry owns all live sessions and expires idle ones.
type Registry struct {
	cfg        Config
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*Session
	lastAccess map[uuid.UUID]time.Time
	now        func() time.Time
}

// NewRegistry creates an empty registry. Call Run to start expiring sessions.
func NewRegistry(cfg Config) *Registry {
	if cfg.DefaultStyle == (types.Style{}) {
		cfg.DefaultStyle = types.DefaultStyle()
	}
	return &Registry{
		cfg:        cfg,
		sessions:   make(map[uuid.UUID]*Session),
		lastAccess: make(map[uuid.UUID]time.Time),
		now:        time.Now,
	}
}

// Create starts a new session with an empty document.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:    uuid.New(),
		Store: store.New(r.cfg.StoreOptions...),
		style: r.cfg.DefaultStyle,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.lastAccess[s.ID] = r.now()
	n := len(r.sessions)
	r.mu.Unlock()

	r.report(n)
	return s
}

// Get returns the session with id and marks it as used.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		r.lastAccess[id] = r.now()
	}
	return s, ok
}

// Touch marks the session with id as used without handing it out. It
// reports false once the session has expired.
func (r *Registry) Touch(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	r.lastAccess[id] = r.now()
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expire drops sessions idle for longer than the TTL and returns how many
// were dropped.
func (r *Registry) Expire() int {
	cutoff := r.now().Add(-r.cfg.TTL)

	r.mu.Lock()
	expired := 0
	for id, last := range r.lastAccess {
		if last.Before(cutoff) {
			delete(r.sessions, id)
			delete(r.lastAccess, id)
			expired++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if expired > 0 {
		log.Printf("[SESSION] Expired %d idle sessions, %d remaining", expired, n)
		r.report(n)
	}
	return expired
}

// Run expires idle sessions every CleanupInterval until stop is closed.
func (r *Registry) Run(stop <-chan struct{}) {
	if r.cfg.CleanupInterval <= 0 {
		<-stop
		return
	}
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Expire()
		case <-stop:
			return
		}
	}
}

func (r *Registry) report(n int) {
	if r.cfg.Gauge != nil {
		r.cfg.Gauge.Set(float64(n))
	}
}
