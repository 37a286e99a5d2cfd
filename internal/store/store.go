package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kamusiapp/kamusi/internal/entity"
)

// Persister receives whole-state snapshots after each committed transition.
type Persister interface {
	Save(state entity.AppState) error
}

// Store owns the in-memory AppState. Actions are applied strictly in
// dispatch order; persistence is gated until the authoritative load has
// hydrated the store, so an early save can never clobber real data.
type Store struct {
	mu        sync.Mutex
	state     entity.AppState
	version   uint64
	hydrated  bool
	persister Persister
	logger    logrus.FieldLogger
	clock     func() time.Time
	subs      map[int]func(entity.AppState)
	nextSub   int

	// persistMu serializes snapshot writes; see save.
	persistMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithPersister wires the snapshot sink invoked after hydration.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// New builds a Store seeded with the given state. The seed is the
// best-effort synchronous snapshot (or a fresh default); the store stays
// un-hydrated until Hydrate is dispatched.
func New(seed entity.AppState, logger logrus.FieldLogger, opts ...Option) *Store {
	s := &Store{
		state:  seed,
		logger: logger,
		clock:  time.Now,
		subs:   make(map[int]func(entity.AppState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state snapshot.
func (s *Store) State() entity.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hydrated reports whether the authoritative load has been applied.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Dispatch applies an action and notifies subscribers with the new state.
// Saves run on the dispatching goroutine after the transition commits;
// consecutive dispatches therefore persist in order, last write wins.
func (s *Store) Dispatch(action Action) entity.AppState {
	action = withIdentity(action)

	s.mu.Lock()
	now := s.clock().UnixMilli()
	s.state = Reduce(s.state, action, now)
	s.version++
	if _, ok := action.(Hydrate); ok {
		s.hydrated = true
	}
	state := s.state
	version := s.version
	persist := s.hydrated && s.persister != nil
	subs := make([]func(entity.AppState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if persist {
		if err := s.save(state, version); err != nil {
			s.logger.WithError(err).Error("persist state snapshot")
		}
	}
	for _, fn := range subs {
		fn(state)
	}
	return state
}

// save skips snapshots that a later dispatch has already superseded.
// The persist mutex is held across the staleness check AND the write, so
// an older snapshot that stalls inside the persister can never complete
// after a newer one: writes reach the persister strictly in version order.
func (s *Store) save(state entity.AppState, version uint64) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	stale := version != s.version
	s.mu.Unlock()
	if stale {
		return nil
	}
	return s.persister.Save(state)
}

// Subscribe registers a state-change callback and returns its unsubscribe
// function. Callbacks fire after every committed transition.
func (s *Store) Subscribe(fn func(entity.AppState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// withIdentity fills generated IDs so the reducer stays deterministic.
func withIdentity(action Action) Action {
	switch a := action.(type) {
	case AddItem:
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		return a
	case AddDeck:
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		return a
	}
	return action
}
