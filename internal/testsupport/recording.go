package testsupport

import (
	"sync"
	"time"

	"reach/internal/selection"
)

// RecordingStore is an in-memory selection.Store that keeps every save.
type RecordingStore struct {
	mu      sync.Mutex
	current selection.State
	saves   []selection.State
	clears  int
	clock   time.Time
}

var _ selection.Store = (*RecordingStore)(nil)

// NewRecordingStore returns an empty store. seed, when given, is what the
// first Load returns.
func NewRecordingStore(seed ...selection.State) *RecordingStore {
	s := &RecordingStore{
		current: selection.Empty(),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(seed) > 0 {
		s.current = seed[0].Clone()
	}
	return s
}

func (s *RecordingStore) Load() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func (s *RecordingStore) Save(state selection.State) (selection.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Second)
	state = state.Clone()
	state.LastUpdated = s.clock
	s.current = state
	s.saves = append(s.saves, state.Clone())
	return state, nil
}

func (s *RecordingStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = selection.Empty()
	s.clears++
	return nil
}

// Saves returns every state written so far.
func (s *RecordingStore) Saves() []selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]selection.State, len(s.saves))
	for i, state := range s.saves {
		out[i] = state.Clone()
	}
	return out
}

// LastSave returns the most recent write, or an empty state.
func (s *RecordingStore) LastSave() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return selection.Empty()
	}
	return s.saves[len(s.saves)-1].Clone()
}

// Clears reports how many times Clear was called.
func (s *RecordingStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}
