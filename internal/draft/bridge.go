package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"reach/internal/logging"
	"reach/internal/persist"
	"reach/internal/selection"
)

// Sink receives a Patch after every change. It may be called repeatedly
// with unchanged values.
type Sink func(Patch)

// Bridge adapts controller outcomes to a Sink.
type Bridge struct {
	sink Sink
}

// NewBridge returns a bridge that forwards to sink.
func NewBridge(sink Sink) *Bridge {
	return &Bridge{sink: sink}
}

// Forward is a selection.Listener.
func (b *Bridge) Forward(out selection.Outcome) {
	if b == nil || b.sink == nil {
		return
	}
	b.sink(FromOutcome(out))
}

// Listener returns Forward as a selection.Listener.
func (b *Bridge) Listener() selection.Listener {
	return b.Forward
}

// LoadDocument reads the draft stored under key. A missing or unreadable
// draft reads as an empty document.
func LoadDocument(ctx context.Context, backend persist.Backend, key string) (Document, error) {
	raw, ok, err := backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	doc := Document{}
	if !ok {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, nil
	}
	return doc, nil
}

// BackendSink returns a Sink that merges each patch into the draft stored
// under key. Failures are logged.
func BackendSink(backend persist.Backend, key string, logger *slog.Logger) Sink {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(
		slog.String(logging.FieldComponent, "draft"),
		slog.String(logging.FieldKey, key),
	)
	return func(p Patch) {
		ctx := context.Background()
		doc, err := LoadDocument(ctx, backend, key)
		if err != nil {
			logger.Warn("draft update skipped", logging.Error(err))
			return
		}
		data, err := json.Marshal(doc.Apply(p))
		if err != nil {
			logger.Warn("encode draft failed", logging.Error(err))
			return
		}
		if err := backend.Set(ctx, key, string(data)); err != nil {
			logger.Warn("write draft failed", logging.Error(err))
			return
		}
		logger.Debug("draft updated",
			slog.Int64(logging.FieldCapacity, p.Capacity),
			slog.Bool("capacity_too_low", p.CapacityTooLow),
		)
	}
}
