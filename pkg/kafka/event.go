package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidEvent marks an envelope missing its id or type. Such messages
// cannot be deduplicated and are skipped.
var ErrInvalidEvent = errors.New("invalid event envelope")

// TopicPrefix is the prefix shared by every platform topic.
const TopicPrefix = "ecommerce"

// Topic builds a fully qualified topic name such as ecommerce.order.confirmed.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}

// Event is the envelope every platform message is wrapped in.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// UnmarshalEvent decodes an event envelope and checks that it carries an
// event id and type.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	switch {
	case event.EventID == "":
		return nil, fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	case event.EventType == "":
		return nil, fmt.Errorf("%w: missing event_type for %s", ErrInvalidEvent, event.EventID)
	}
	return &event, nil
}

// UnmarshalData decodes the event payload into target. An event without a
// payload leaves target untouched.
func (e *Event) UnmarshalData(target any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", e.EventType, err)
	}
	return nil
}
