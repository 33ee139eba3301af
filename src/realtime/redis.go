package realtime

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "janawaaz."

// Redis implements Publisher and Subscriber over redis pub/sub.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (r *Redis) PublishInsert(ctx context.Context, channel string, messageID uint64) error {
	payload, err := encodeEvent(InsertEvent{Channel: channel, MessageID: messageID})
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, keyPrefix+channel, payload).Err()
}

func (r *Redis) Subscribe(ctx context.Context, channel string, fn Handler) (Subscription, error) {
	ps := r.rdb.Subscribe(ctx, keyPrefix+channel)
	// Confirm the subscription before returning so the caller cannot miss
	// inserts published after Subscribe returns.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	go func() {
		for msg := range ps.Channel() {
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				log.Printf("realtime: bad payload on %s: %v", msg.Channel, err)
				continue
			}
			fn(ev)
		}
	}()

	return &redisSubscription{ps: ps}, nil
}

type redisSubscription struct {
	ps *redis.PubSub
}

func (s *redisSubscription) Unsubscribe() error { return s.ps.Close() }
