package taxonomy

import (
	"context"
	"sync"
)

// Status is the lifecycle of a one-shot taxonomy load.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// LoadFunc fetches a taxonomy snapshot.
type LoadFunc func(ctx context.Context) (*Tree, error)

// Source performs a single taxonomy load per session. Failures are reported
// through Status and are never retried here.
type Source struct {
	load LoadFunc
	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	status  Status
	tree    *Tree
	err     error
	onReady []func(*Tree)
}

// NewSource wraps a loader.
func NewSource(load LoadFunc) *Source {
	return &Source{load: load, done: make(chan struct{})}
}

// NewFileSource loads the taxonomy file at path.
func NewFileSource(path string) *Source {
	return NewSource(func(context.Context) (*Tree, error) {
		return Load(path)
	})
}

// Static returns a Source that is already ready with tree.
func Static(tree *Tree) *Source {
	s := NewSource(func(context.Context) (*Tree, error) { return tree, nil })
	s.Start(context.Background())
	<-s.done
	return s
}

// Start launches the load in the background; later calls are no-ops.
func (s *Source) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.run(ctx)
	})
}

func (s *Source) run(ctx context.Context) {
	defer close(s.done)
	tree, err := s.load(ctx)

	s.mu.Lock()
	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.mu.Unlock()
		return
	}
	if tree == nil {
		tree = &Tree{}
	}
	s.status = StatusReady
	s.tree = tree
	listeners := append([]func(*Tree){}, s.onReady...)
	s.onReady = nil
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(tree)
	}
}

// Wait blocks until the load finishes or ctx ends.
func (s *Source) Wait(ctx context.Context) (*Tree, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree, s.err
}

// Status reports the load state and, when failed, its error.
func (s *Source) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Tree returns the loaded tree, or nil while pending or after failure.
func (s *Source) Tree() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// OnReady registers fn to run once the tree is available. If it already is,
// fn runs immediately on the caller's goroutine.
func (s *Source) OnReady(fn func(*Tree)) {
	s.mu.Lock()
	if s.status == StatusReady {
		tree := s.tree
		s.mu.Unlock()
		fn(tree)
		return
	}
	s.onReady = append(s.onReady, fn)
	s.mu.Unlock()
}
