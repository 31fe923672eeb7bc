// Package store holds the single mutable résumé document and the update path
// every view goes through.
package store

import (
	"sync"

	"github.com/jonathan/cv-builder/internal/types"
)

// Listener is notified after every successful update with the new document
// and its version. Listeners run synchronously on the updating goroutine,
// after the lock is released, and must not block.
type Listener func(doc types.Document, version uint64)

// Observer receives the outcome of every update attempt.
type Observer interface {
	ObserveUpdate(op Op, err error)
}

// Store holds one Document. All mutation goes through Update.
type Store struct {
	mu        sync.RWMutex
	doc       types.Document
	version   uint64
	listeners map[int]Listener
	nextID    int
	observer  Observer
}

// Option configures a Store.
type Option func(*Store)

// WithObserver reports every update to o.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New returns a store holding an empty document at version 0.
func New(opts ...Option) *Store {
	s := &Store{
		doc:       types.NewDocument(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current document and its version.
func (s *Store) Snapshot() (types.Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), s.version
}

// Document returns a copy of the current document.
func (s *Store) Document() types.Document {
	doc, _ := s.Snapshot()
	return doc
}

// Version returns the number of successful updates so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update applies fn to the current document and atomically replaces it with
// the result, then notifies listeners. If fn fails the document is unchanged
// and nobody is notified.
func (s *Store) Update(op Op, fn Transform) (uint64, error) {
	s.mu.Lock()
	next, err := fn(s.doc.Clone())
	if err != nil {
		version := s.version
		s.mu.Unlock()
		s.observe(op, err)
		return version, err
	}
	s.doc = next
	s.version++
	version := s.version
	snapshot := next.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.observe(op, nil)
	for _, l := range listeners {
		l(snapshot, version)
	}
	return version, nil
}

// Subscribe registers l for future updates and returns a func that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
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

func (s *Store) observe(op Op, err error) {
	if s.observer != nil {
		s.observer.ObserveUpdate(op, err)
	}
}
