package persist

import "context"

// Backend is a keyed text store shared by execution contexts.
type Backend interface {
	// ContextID identifies the execution context this backend writes as.
	ContextID() string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Watch calls fn on a background goroutine whenever another execution
	// context sets or deletes key. Writes made through this backend are not
	// reported. The watch is registered before Watch returns; the returned
	// stop function ends it and waits for the goroutine to exit.
	Watch(key string, fn func()) (stop func(), err error)
	Close() error
}
