package notify

import "encoding/json"

// Event is a single message pushed to stream subscribers. Snapshot holds the
// marshaled engine snapshot so this package stays independent of the engine.
type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
}

// JSON serializes the event for the wire.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}
