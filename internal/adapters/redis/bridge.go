// Package redis bridges span lifecycle events between processes. A process
// under test publishes its events to a Redis channel; the asserting process
// subscribes and feeds them into its local registry through the replayer.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/internal/adapters/replay"
	"github.com/aretw0/spanassert/internal/logging"
)

const defaultChannel = "spanassert:events"

// Publisher emits span lifecycle events on a Redis channel.
type Publisher struct {
	client  *backend.Client
	channel string
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithPublisherChannel overrides the event channel name.
func WithPublisherChannel(channel string) PublisherOption {
	return func(p *Publisher) {
		p.channel = channel
	}
}

// NewPublisher creates a publisher connected to the given address.
func NewPublisher(address, password string, db int, opts ...PublisherOption) *Publisher {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewPublisherFromClient(client, opts...)
}

// NewPublisherFromClient creates a publisher from an existing client.
func NewPublisherFromClient(client *backend.Client, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:  client,
		channel: defaultChannel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends one lifecycle event.
func (p *Publisher) Publish(ctx context.Context, ev replay.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscriber consumes lifecycle events from a Redis channel and applies them
// to a local registry.
type Subscriber struct {
	client   *backend.Client
	channel  string
	replayer *replay.Replayer
	logger   *slog.Logger
}

// SubscriberOption configures the Subscriber.
type SubscriberOption func(*Subscriber)

// WithSubscriberChannel overrides the event channel name.
func WithSubscriberChannel(channel string) SubscriberOption {
	return func(s *Subscriber) {
		s.channel = channel
	}
}

// WithSubscriberLogger configures a logger for dropped events.
func WithSubscriberLogger(logger *slog.Logger) SubscriberOption {
	return func(s *Subscriber) {
		s.logger = logger
	}
}

// NewSubscriber creates a subscriber feeding the given registry.
func NewSubscriber(client *backend.Client, registry *spanassert.Registry, opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		client:  client,
		channel: defaultChannel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.replayer = replay.New(registry, replay.WithLogger(s.logger))
	return s
}

// Subscribe opens the channel subscription. The returned stop function must
// be called to release it.
//
// Subscription is split from Run so callers can be sure the subscription is
// established before the process under test starts publishing.
func (s *Subscriber) Subscribe(ctx context.Context) (run func(context.Context) error, stop func() error, err error) {
	sub := s.client.Subscribe(ctx, s.channel)
	// Force the SUBSCRIBE round trip so events published after this point
	// are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe %q: %w", s.channel, err)
	}

	ch := sub.Channel()
	run = func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				s.apply(msg.Payload)
			}
		}
	}
	return run, sub.Close, nil
}

// apply decodes and dispatches one payload. Malformed or stale events are
// logged and dropped; one bad publisher must not kill the subscription.
func (s *Subscriber) apply(payload string) {
	var ev replay.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		s.logger.Warn("dropping malformed event", "err", err)
		return
	}
	if err := s.replayer.Apply(ev); err != nil {
		s.logger.Warn("dropping event", "err", err, "id", ev.ID, "type", ev.Type)
	}
}
