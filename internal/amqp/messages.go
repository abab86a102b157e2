package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change operations carried by a ChangeEvent.
const (
	OpCreated = "created"
	OpDeleted = "deleted"
	OpUpdated = "updated"
)

// ChangeEvent announces that a stored record changed. It carries only
// identifiers; consumers re-read the store for the current state.
type ChangeEvent struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Month     string    `json:"month,omitempty"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(kind, op, id, month string, revision int64) *ChangeEvent {
	return &ChangeEvent{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Month:     month,
		Revision:  revision,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event and checks the required fields.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Kind == "" || ev.Op == "" {
		return nil, fmt.Errorf("change event missing kind or op")
	}
	return &ev, nil
}
