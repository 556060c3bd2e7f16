package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
)

// postEventsChannel carries serialized feed events between instances.
const postEventsChannel = "posts:events"

// PubSub provides cross-instance event fan-out via Redis Pub/Sub. Every
// instance publishes the events it produces and replays events received
// from peers into its local hub.
type PubSub struct {
	rdb *goredis.Client
}

// NewPubSub creates a new PubSub instance.
func NewPubSub(client *Client) *PubSub {
	return &PubSub{rdb: client.rdb}
}

// PublishEvent publishes a serialized event to the shared channel.
func (ps *PubSub) PublishEvent(ctx context.Context, payload []byte) error {
	return ps.rdb.Publish(ctx, postEventsChannel, payload).Err()
}

// Subscription represents an active Pub/Sub subscription for feed events.
type Subscription struct {
	sub    *goredis.PubSub
	Ch     <-chan []byte
	cancel context.CancelFunc
}

// Close unsubscribes and closes the subscription.
func (s *Subscription) Close() {
	s.cancel()
	_ = s.sub.Close()
}

// SubscribeEvents subscribes to the shared event channel. Returns a
// Subscription whose Ch receives raw event payloads. Call Close when done.
func (ps *PubSub) SubscribeEvents(ctx context.Context) *Subscription {
	sub := ps.rdb.Subscribe(ctx, postEventsChannel)

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []byte, 16)

	go func() {
		defer close(ch)
		msgCh := sub.Channel()
		for {
			select {
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				select {
				case ch <- []byte(msg.Payload):
				default:
					slog.Warn("Dropping pubsub event: receiver is slow")
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{
		sub:    sub,
		Ch:     ch,
		cancel: cancel,
	}
}
