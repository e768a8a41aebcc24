package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what changed.
type EventType string

const (
	EventTypeSignedIn            EventType = "auth.signed_in"
	EventTypeSignedOut           EventType = "auth.signed_out"
	EventTypeTrainingCreated     EventType = "training.created"
	EventTypeRegistrationCreated EventType = "registration.created"
	EventTypeFeedbackCreated     EventType = "feedback.created"
)

// Event is a change notification carried on the event bus.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	SubjectID string          `json:"subject_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEvent creates an event about subjectID. The payload is marshalled to
// JSON; a payload that cannot be encoded is dropped.
func NewEvent(eventType EventType, subjectID string, payload interface{}) *Event {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			event.Payload = data
		}
	}
	return event
}
