package persist

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrBackendClosed is returned by operations on a closed backend.
var ErrBackendClosed = errors.New("backend closed")

// MemorySpace is an in-process keyed store shared by several contexts.
type MemorySpace struct {
	mu       sync.Mutex
	values   map[string]string
	watchers map[*memoryWatcher]struct{}
}

type memoryWatcher struct {
	contextID string
	key       string
	signal    chan struct{}
}

// NewMemorySpace returns an empty space.
func NewMemorySpace() *MemorySpace {
	return &MemorySpace{
		values:   make(map[string]string),
		watchers: make(map[*memoryWatcher]struct{}),
	}
}

// Context returns a backend for a new execution context in this space.
func (s *MemorySpace) Context() *MemoryBackend {
	return &MemoryBackend{space: s, id: uuid.NewString()}
}

func (s *MemorySpace) notify(origin, key string) {
	for w := range s.watchers {
		if w.key != key || w.contextID == origin {
			continue
		}
		select {
		case w.signal <- struct{}{}:
		default:
		}
	}
}

// MemoryBackend is one execution context's view of a MemorySpace.
type MemoryBackend struct {
	space  *MemorySpace
	id     string
	mu     sync.Mutex
	closed bool
}

var _ Backend = (*MemoryBackend)(nil)

func (b *MemoryBackend) ContextID() string { return b.id }

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	if b.isClosed() {
		return "", false, ErrBackendClosed
	}
	b.space.mu.Lock()
	defer b.space.mu.Unlock()
	value, ok := b.space.values[key]
	return value, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	if b.isClosed() {
		return ErrBackendClosed
	}
	b.space.mu.Lock()
	defer b.space.mu.Unlock()
	b.space.values[key] = value
	b.space.notify(b.id, key)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	if b.isClosed() {
		return ErrBackendClosed
	}
	b.space.mu.Lock()
	defer b.space.mu.Unlock()
	if _, ok := b.space.values[key]; !ok {
		return nil
	}
	delete(b.space.values, key)
	b.space.notify(b.id, key)
	return nil
}

func (b *MemoryBackend) Watch(key string, fn func()) (func(), error) {
	if b.isClosed() {
		return nil, ErrBackendClosed
	}
	w := &memoryWatcher{contextID: b.id, key: key, signal: make(chan struct{}, 1)}
	b.space.mu.Lock()
	b.space.watchers[w] = struct{}{}
	b.space.mu.Unlock()

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case <-w.signal:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.space.mu.Lock()
			delete(b.space.watchers, w)
			b.space.mu.Unlock()
			close(quit)
			<-done
		})
	}, nil
}

func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *MemoryBackend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
