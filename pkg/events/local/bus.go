// Package local is the in-process event bus used when NATS is not configured.
package local

import (
	"context"
	"fmt"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "ampersand.events"

// Bus publishes domain events onto a watermill go-channel.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

// NewBus creates a new in-process event bus
func NewBus(log logger.ILogger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
		logger: log,
	}
}

func (b *Bus) Publish(ctx context.Context, event events.Event) error {
	id, data, err := events.Encode(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	msg := message.NewMessage(id, data)
	msg.Metadata.Set("type", event.EventType())
	return b.pubSub.Publish(Topic, msg)
}

// Subscribe delivers decoded events to handler until ctx is done.
func (b *Bus) Subscribe(ctx context.Context, handler func(ctx context.Context, event events.Event) error) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			b.process(ctx, msg, handler)
		}
	}()
	return nil
}

func (b *Bus) process(ctx context.Context, msg *message.Message, handler func(ctx context.Context, event events.Event) error) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		b.logger.Error("EVENTS", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack()
		return
	}

	if err := handler(ctx, event); err != nil {
		b.logger.Warn("EVENTS", "Event handler failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
	msg.Ack()
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// AuditHandler writes every event to the log.
func AuditHandler(log logger.ILogger) func(ctx context.Context, event events.Event) error {
	return func(ctx context.Context, event events.Event) error {
		details := map[string]interface{}{"type": event.EventType()}
		for k, v := range event.Payload() {
			details[k] = v
		}
		log.Info("AUDIT", "Domain event", details)
		return nil
	}
}
