package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

var _ providers.EventBus = (*LocalEventBus)(nil)

type localSubscription struct {
	cancel context.CancelFunc
}

// LocalEventBus fans events out to subscribers in the same process on a
// watermill go channel. It backs single-process deployments that run
// without Redis.
//
// Publish returns once every current subscriber has taken the event, so
// events from one publisher arrive in publish order.
type LocalEventBus struct {
	pubsub *gochannel.GoChannel

	mu            sync.Mutex
	subscriptions map[string]map[*localSubscription]struct{}
	closed        bool
}

// NewLocalEventBus creates an in-process event bus
func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            subscriberBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
		subscriptions: make(map[string]map[*localSubscription]struct{}),
	}
}

// Publish delivers the event to current subscribers. A subscriber whose
// buffer is full misses the event.
func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.pubsub.Publish(channel, message.NewMessage(event.ID, payload)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done
func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.Event, error) {
	eventChan := make(chan *entities.Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(eventChan)
		return eventChan, nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	messages, err := b.pubsub.Subscribe(subCtx, channel)
	if err != nil {
		b.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &localSubscription{cancel: cancel}
	if b.subscriptions[channel] == nil {
		b.subscriptions[channel] = make(map[*localSubscription]struct{})
	}
	b.subscriptions[channel][sub] = struct{}{}
	b.mu.Unlock()

	go b.forward(ctx, channel, sub, messages, eventChan)

	return eventChan, nil
}

// forward decodes messages onto eventChan until the watermill subscription
// closes. The subscription is unregistered before eventChan closes.
func (b *LocalEventBus) forward(ctx context.Context, channel string, sub *localSubscription, messages <-chan *message.Message, eventChan chan *entities.Event) {
	defer close(eventChan)
	defer b.removeSubscription(channel, sub)

	logger := observability.LoggerFromContext(ctx)
	for msg := range messages {
		var event entities.Event
		err := json.Unmarshal(msg.Payload, &event)
		msg.Ack()
		if err != nil {
			logger.Warn().Err(err).Str("channel", channel).Msg("Failed to unmarshal event")
			continue
		}

		select {
		case eventChan <- &event:
		default:
			logger.Warn().
				Str("channel", channel).
				Str("event_id", event.ID).
				Msg("Subscriber channel full, skipping event")
		}
	}
}

func (b *LocalEventBus) removeSubscription(channel string, sub *localSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub.cancel()
	subscriptions, ok := b.subscriptions[channel]
	if !ok {
		return
	}
	delete(subscriptions, sub)
	if len(subscriptions) == 0 {
		delete(b.subscriptions, channel)
	}
}

// Unsubscribe drops every subscriber of a channel
func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscriptions[channel] {
		sub.cancel()
	}
	return nil
}

// Close drops all subscribers; later subscriptions receive a closed channel
func (b *LocalEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, subscriptions := range b.subscriptions {
		for sub := range subscriptions {
			sub.cancel()
		}
	}
	b.mu.Unlock()

	return b.pubsub.Close()
}

// SubscriberCount returns the number of live subscribers on channel
func (b *LocalEventBus) SubscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions[channel])
}
