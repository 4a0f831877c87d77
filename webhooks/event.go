package webhooks

import (
	"encoding/json"
	"time"
)

// Event is an authenticated webhook delivery. Data keeps the raw payload so
// callers can decode domain shapes without the package taking a position on
// the event schema.
type Event struct {
	ID        string
	Type      string
	Data      json.RawMessage
	Timestamp time.Time
}

type eventProbe struct {
	ID    string `json:"id"`
	Event string `json:"event"`
}

// ConstructEvent verifies the payload and, only after authentication
// succeeds, decodes it into an Event. Payloads that fail verification never
// reach the JSON layer.
func (v Verifier) ConstructEvent(payload []byte, header, secret string, tolerance time.Duration) (Event, error) {
	parsed, err := v.Verify(payload, header, secret, tolerance)
	if err != nil {
		return Event{}, err
	}

	if !json.Valid(payload) {
		return Event{}, invalidPayloadError()
	}

	var probe eventProbe
	// Valid JSON that is not an object (an array, a bare string) still
	// yields an event with empty identity fields.
	_ = json.Unmarshal(payload, &probe)

	eventType := probe.Event
	if eventType == "" {
		eventType = "unknown"
	}

	return Event{
		ID:        probe.ID,
		Type:      eventType,
		Data:      json.RawMessage(append([]byte(nil), payload...)),
		Timestamp: time.Unix(parsed.Timestamp, 0).UTC(),
	}, nil
}
