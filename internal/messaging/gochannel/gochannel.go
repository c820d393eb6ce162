// Package gochannel is the in-process broker used when no Kafka brokers are
// configured. Messages published before a subscriber exists are dropped.
package gochannel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/messaging"
)

const keyMetadata = "key"

// Broker wraps a watermill GoChannel pub/sub.
type Broker struct {
	pubSub *gochannel.GoChannel
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(logger),
		),
	}
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(keyMetadata, key)
	msg.SetContext(ctx)
	return b.pubSub.Publish(topic, msg)
}

// Consume ignores groupID: every subscriber gets every message.
func (b *Broker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Failed to subscribe", "topic", topic, "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer shutting down", "topic", topic)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := handler(ctx, msg.Payload); err != nil {
				slog.Error("Error handling message", "topic", topic, "err", err)
			}
			msg.Ack()
		}
	}
}

func (b *Broker) Close() error {
	return b.pubSub.Close()
}
