package pubsub

import (
	"context"
	"time"

	"casino_server/internal/logger"

	"github.com/nats-io/nats.go"
)

// NATSBroker is the alternative broadcast backend, publishing room updates
// on subjects named room.{id}.
type NATSBroker struct {
	nc *nats.Conn
}

func NewNATSBroker(url string) (*NATSBroker, error) {
	opts := []nats.Option{
		nats.Name("casino-server"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSBroker{nc: nc}, nil
}

func subjectName(roomID string) string {
	return "room." + roomID
}

func (b *NATSBroker) Publish(ctx context.Context, roomID string, data []byte) error {
	return b.nc.Publish(subjectName(roomID), data)
}

func (b *NATSBroker) Subscribe(ctx context.Context, roomID string) (<-chan []byte, func(), error) {
	out := make(chan []byte, 64)
	sub, err := b.nc.Subscribe(subjectName(roomID), func(m *nats.Msg) {
		select {
		case out <- m.Data:
		default:
			logger.Warn("nats subscriber lagging, dropping message", "room_id", roomID)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	stop := func() {
		_ = sub.Unsubscribe()
		close(out)
	}
	return out, stop, nil
}

func (b *NATSBroker) Close() error {
	b.nc.Close()
	return nil
}
