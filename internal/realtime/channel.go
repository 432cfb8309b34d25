package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// State is the channel connection state. It is explicit rather than
// incidental: the client is push-driven while Connected and poll-driven
// while Disconnected.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Channel is a client for the ThinkEx real-time channel. All channel names
// are namespaced; the client name identifies this client in published
// messages. Safe for concurrent use.
type Channel struct {
	rdb        *redis.Client
	namespace  string
	clientName string
	log        *zap.Logger
	state      atomic.Int32
}

// NewChannel creates a channel client. The namespace must not be empty; it
// scopes every pub/sub channel this client touches.
func NewChannel(redisOpts *redis.Options, namespace, clientName string, log *zap.Logger) (*Channel, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Channel{
		rdb:        redis.NewClient(redisOpts),
		namespace:  namespace,
		clientName: clientName,
		log:        log,
	}, nil
}

// Close closes the underlying connection. Implements io.Closer.
func (c *Channel) Close() error {
	c.state.Store(int32(StateDisconnected))
	return c.rdb.Close()
}

// Ping verifies connectivity. Useful for health checks.
func (c *Channel) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// State returns the current connection state.
func (c *Channel) State() State {
	return State(c.state.Load())
}

// PublishClientMessage publishes a fire-and-forget client message. The
// payload is wrapped with the client name so the backend can attribute it.
func (c *Channel) PublishClientMessage(ctx context.Context, payload any) error {
	envelope := struct {
		Client  string `json:"client"`
		Payload any    `json:"payload"`
	}{Client: c.clientName, Payload: payload}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal client message: %w", err)
	}
	if err := c.rdb.Publish(ctx, ClientMessageChannel(c.namespace), data).Err(); err != nil {
		return fmt.Errorf("failed to publish client message: %w", err)
	}
	return nil
}

// Subscription is an active subscription to server-update events. Caller
// must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan Message
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of server-update messages. It is closed when
// the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan Message {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors, such as
// malformed message payloads. The subscription continues after errors -
// bad messages are skipped, never fatal.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe subscribes to server-update events. The subscription delivers
// messages on a buffered channel; malformed payloads go to Errors() and are
// skipped. The channel state flips to Connected once the subscription is
// confirmed and back to Disconnected when the subscription ends.
func (c *Channel) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, ServerUpdateChannel(c.namespace))

	// Confirm the subscription before reporting Connected.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to server updates: %w", err)
	}
	c.state.Store(int32(StateConnected))

	eventsChan := make(chan Message, 16)
	errorsChan := make(chan error, 16)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()
		defer c.state.Store(int32(StateDisconnected))

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var m Message
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal server update: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- m:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// Listen runs a resilient consume loop: subscribe, deliver each message to
// handler, and on subscription loss retry with exponential backoff until the
// context is cancelled. Subscription errors (malformed payloads) are logged
// and dropped; only context cancellation ends the loop.
func (c *Channel) Listen(ctx context.Context, handler func(Message)) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry forever
	bo.MaxInterval = 30 * time.Second

	for {
		sub, err := c.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := bo.NextBackOff()
			c.log.Warn("subscribe failed, retrying",
				zap.Error(err),
				zap.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		bo.Reset()
		c.log.Info("real-time channel connected",
			zap.String("channel", ServerUpdateChannel(c.namespace)))

		c.consume(ctx, sub, handler)
		sub.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("real-time channel disconnected, reconnecting")
	}
}

func (c *Channel) consume(ctx context.Context, sub *Subscription, handler func(Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Events():
			if !ok {
				return
			}
			handler(msg)
		case err, ok := <-sub.Errors():
			if !ok {
				return
			}
			c.log.Warn("dropping malformed server update", zap.Error(err))
		}
	}
}
