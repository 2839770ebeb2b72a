package dto

import "encoding/json"

// Event types pushed to websocket viewers.
const (
	EventExtractionStarted = "extraction_started"
	EventFrameSaved        = "frame_saved"
	EventExtractionDone    = "extraction_done"
	EventTagsUpdated       = "tags_updated"
)

// Event is a JSON message broadcast over /api/events.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Encode marshals the event for the wire.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
