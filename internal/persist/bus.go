package persist

import "sync"

// localBus delivers same-context change events. Events carry no payload;
// handlers re-read the store.
type localBus struct {
	mu       sync.Mutex
	handlers []func()
}

func (b *localBus) subscribe(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

func (b *localBus) publish() {
	b.mu.Lock()
	handlers := append([]func(){}, b.handlers...)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}
