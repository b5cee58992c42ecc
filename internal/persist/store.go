package persist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"reach/internal/logging"
	"reach/internal/selection"
)

// Snapshot is the read-side view handed to observers.
type Snapshot struct {
	State         selection.State `json:"state"`
	HasSelections bool            `json:"hasSelections"`
	IsEmpty       bool            `json:"isEmpty"`
}

func snapshotOf(state selection.State) Snapshot {
	return Snapshot{
		State:         state,
		HasSelections: state.HasSelections(),
		IsEmpty:       state.IsEmpty(),
	}
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source used by Save.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store persists the selection under one key and notifies subscribers on
// every change, whether it came from this context or another one.
type Store struct {
	backend Backend
	key     string
	logger  *slog.Logger
	now     func() time.Time
	bus     localBus
	stop    func()

	mu      sync.Mutex
	last    time.Time
	current Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

var _ selection.Store = (*Store)(nil)

// NewStore reads the current selection and starts watching the backend for
// changes made by other execution contexts. Call Close to stop watching.
func NewStore(backend Backend, key string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		backend: backend,
		key:     key,
		logger:  logging.NewNop(),
		now:     time.Now,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(
		slog.String(logging.FieldComponent, "store"),
		slog.String(logging.FieldContextID, backend.ContextID()),
		slog.String(logging.FieldKey, key),
	)

	state := s.Load()
	s.current = snapshotOf(state)
	s.last = state.LastUpdated

	s.bus.subscribe(s.refresh)
	stop, err := backend.Watch(key, func() {
		s.logger.Debug("selection changed in another context")
		s.refresh()
	})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", key, err)
	}
	s.stop = stop
	return s, nil
}

// Save stamps lastUpdated, writes the full document, and then publishes on
// the same-context bus. It returns the state as written.
func (s *Store) Save(state selection.State) (selection.State, error) {
	state = state.Clone()

	s.mu.Lock()
	stamp := s.now().UTC()
	if !stamp.After(s.last) {
		stamp = s.last.Add(time.Nanosecond)
	}
	if stamp.Before(state.LastUpdated) {
		stamp = state.LastUpdated.Add(time.Nanosecond)
	}
	state.LastUpdated = stamp
	s.last = stamp
	s.mu.Unlock()

	raw, err := encodeState(state)
	if err != nil {
		return state, fmt.Errorf("encode selection: %w", err)
	}
	if err := s.backend.Set(context.Background(), s.key, raw); err != nil {
		return state, fmt.Errorf("write selection: %w", err)
	}
	s.logger.Debug("selection saved", slog.String(logging.FieldRevision, stamp.Format(time.RFC3339Nano)))

	s.bus.publish()
	return state, nil
}

// Load returns the stored selection, or an empty one if the key is missing
// or cannot be read.
func (s *Store) Load() selection.State {
	raw, ok, err := s.backend.Get(context.Background(), s.key)
	if err != nil {
		s.logger.Warn("read selection failed; using empty selection", logging.Error(err))
		return selection.Empty()
	}
	if !ok {
		return selection.Empty()
	}
	return decodeState(raw)
}

// Clear removes the stored selection without notifying anyone.
func (s *Store) Clear() error {
	if err := s.backend.Delete(context.Background(), s.key); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// Current returns the latest snapshot seen by this store.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current
	snap.State = snap.State.Clone()
	return snap
}

// Subscribe registers fn for every change notification and returns its
// unsubscribe function. fn runs without store locks held.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// ContextID identifies the execution context this store writes from.
func (s *Store) ContextID() string { return s.backend.ContextID() }

// Close stops watching the backend. The backend itself stays open.
func (s *Store) Close() error {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	return nil
}

// refresh is the single handler behind both notification channels.
func (s *Store) refresh() {
	state := s.Load()
	snap := snapshotOf(state)

	s.mu.Lock()
	s.current = snap
	if state.LastUpdated.After(s.last) {
		s.last = state.LastUpdated
	}
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		view := snap
		view.State = snap.State.Clone()
		fn(view)
	}
}
