package pubsub

import (
	"context"
	"fmt"
	"time"

	"casino_server/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// RedisBroker fans out room updates over redis pub/sub channels named
// room:{id}.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to redis. A failed ping returns an error so the
// caller can fall back to the in-process broker.
func NewRedisBroker(addr, password string, db int) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBroker{client: client}, nil
}

func channelName(roomID string) string {
	return "room:" + roomID
}

func (b *RedisBroker) Publish(ctx context.Context, roomID string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return b.client.Publish(ctx, channelName(roomID), data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, roomID string) (<-chan []byte, func(), error) {
	sub := b.client.Subscribe(ctx, channelName(roomID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			default:
				logger.Warn("redis subscriber lagging, dropping message", "room_id", roomID)
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return out, stop, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
