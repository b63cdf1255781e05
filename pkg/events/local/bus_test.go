package local

import (
	"context"
	"testing"
	"time"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversEvents(t *testing.T) {
	bus := NewBus(logger.NewNopLogger())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Event, 1)
	require.NoError(t, bus.Subscribe(ctx, func(ctx context.Context, e events.Event) error {
		received <- e
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, events.NewSearchExecuted("c1", "what is go", 4, []string{"https://go.dev"})))

	select {
	case e := <-received:
		assert.Equal(t, events.TypeSearchExecuted, e.EventType())
		assert.Equal(t, "what is go", e.Payload()["query"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestAuditHandler(t *testing.T) {
	h := AuditHandler(logger.NewNopLogger())
	assert.NoError(t, h(context.Background(), events.NewReplyGenerated("c1", "", false, 3)))
}
