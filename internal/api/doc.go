// Package api defines wire-format types and converters for the console HTTP
// API. It translates selection snapshots and taxonomy projections into
// transport-friendly DTOs so clients never depend on internal types.
//
// # Key Types
//
// Selection: the persisted selection plus derived flags (hasSelections,
// isEmpty, capacityTooLow) and the controller phase.
//
// OptionList: ordered value/label pairs for one taxonomy level.
//
// Status: execution context, backend and taxonomy load state.
//
// StreamMessage: frames pushed over the selection WebSocket.
//
// # Design Notes
//
// DTOs use camelCase JSON tags, matching the persisted selection document.
// Timestamps use RFC3339 with milliseconds. Metadata snapshots pass through
// as json.RawMessage to avoid double-encoding.
package api
