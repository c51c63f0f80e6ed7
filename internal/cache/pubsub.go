package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Channels carrying engine events outside the command path.
const (
	ChannelTally   = "events:tally"
	ChannelProfile = "events:profile"
)

// Publisher pushes engine events onto a channel. Delivery is best
// effort: publish failures are logged by callers and never roll back the
// transaction that produced the event.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

type redisPublisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

func (p *redisPublisher) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, data).Err()
}

// Subscribe consumes a channel until ctx is cancelled, invoking handler
// for every message. Handler errors are logged and the loop keeps going;
// one bad activation must not stall the monitor.
func Subscribe(ctx context.Context, client *redis.Client, channel string, handler func(ctx context.Context, payload []byte) error) {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := handler(ctx, []byte(msg.Payload)); err != nil {
				log.Printf("handler for %s failed: %v", channel, err)
			}
		}
	}
}
