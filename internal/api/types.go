package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Selection describes the current selection in a transport-friendly format.
type Selection struct {
	CampaignTitle  string                     `json:"campaignTitle"`
	Level1         string                     `json:"level1"`
	Level2s        []string                   `json:"level2s"`
	Level3s        []string                   `json:"level3s"`
	Tags           []string                   `json:"tags"`
	Count          int64                      `json:"count"`
	Metadata       map[string]json.RawMessage `json:"metadata"`
	LastUpdated    string                     `json:"lastUpdated,omitempty"`
	HasSelections  bool                       `json:"hasSelections"`
	IsEmpty        bool                       `json:"isEmpty"`
	CapacityTooLow bool                       `json:"capacityTooLow"`
	Phase          string                     `json:"phase,omitempty"`
}

// Option is one selectable taxonomy entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionList is the response for every taxonomy listing.
type OptionList struct {
	Level   string   `json:"level"`
	Parent  []string `json:"parent,omitempty"`
	Options []Option `json:"options"`
}

// ValueRequest carries a single key for mutation endpoints.
type ValueRequest struct {
	Value string `json:"value"`
}

// TaxonomyStatus reports the one-shot taxonomy load.
type TaxonomyStatus struct {
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
	Categories int    `json:"categories"`
}

// Status summarizes the running console.
type Status struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	ContextID     string         `json:"contextId"`
	Backend       string         `json:"backend"`
	DatabasePath  string         `json:"databasePath,omitempty"`
	LockFilePath  string         `json:"lockFilePath,omitempty"`
	Taxonomy      TaxonomyStatus `json:"taxonomy"`
	Subscribers   int            `json:"subscribers"`
	LowCapacityAt int64          `json:"lowCapacityThreshold"`
}

// Stream frame types.
const (
	StreamSnapshot = "snapshot"
	StreamError    = "error"
)

// StreamMessage is one WebSocket frame.
type StreamMessage struct {
	Type         string     `json:"type"`
	SubscriberID string     `json:"subscriberId"`
	Selection    *Selection `json:"selection,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
