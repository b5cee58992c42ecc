package persist

import (
	"encoding/json"

	"reach/internal/selection"
)

// documentVersion marks the persisted layout. Documents without a version
// predate the marker and are read as version 1.
const documentVersion = 1

type document struct {
	Version int `json:"version"`
	selection.State
}

func encodeState(state selection.State) (string, error) {
	data, err := json.Marshal(document{Version: documentVersion, State: state})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeState never fails: unreadable or foreign-version documents read as
// an empty selection. At most one category is kept.
func decodeState(raw string) selection.State {
	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return selection.Empty()
	}
	if doc.Version != 0 && doc.Version != documentVersion {
		return selection.Empty()
	}
	state := doc.State.Clone()
	if len(state.Level1s) > 1 {
		state.Level1s = state.Level1s[:1]
	}
	return state
}
