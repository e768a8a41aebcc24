package providers

import (
	"context"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.Event) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed and the subscription released when ctx is done.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.Event, error)

	// Unsubscribe drops every subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelTrainings carries program creation events
	EventChannelTrainings = "trainings:updates"

	// EventChannelTrainingPrefix is the prefix for program-specific channels
	EventChannelTrainingPrefix = "training:"

	// EventChannelAuthPrefix is the prefix for per-session auth channels
	EventChannelAuthPrefix = "auth:"
)

// GetFeedbackChannel returns the channel carrying feedback writes for a program
func GetFeedbackChannel(trainingID string) string {
	return EventChannelTrainingPrefix + trainingID + ":feedback"
}

// GetEnrollmentChannel returns the channel carrying registrations for a program
func GetEnrollmentChannel(trainingID string) string {
	return EventChannelTrainingPrefix + trainingID + ":registrations"
}

// GetAuthChannel returns the channel carrying auth state changes for a session
func GetAuthChannel(sessionID string) string {
	return EventChannelAuthPrefix + sessionID
}
