package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishRunsAllHandlersDespiteFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var calls []string
	d.Subscribe(EventOrderPlaced, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("smtp down")
	})
	d.Subscribe(EventOrderPlaced, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventOrderStatusChanged, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventOrderPlaced, "student-1", OrderPlacedPayload{ItemCount: 2}))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "event handler failed", logs.All()[0].Message)
}

func TestNewStampsEvent(t *testing.T) {
	event := New(EventOrderStatusChanged, "vendor-1", OrderStatusChangedPayload{})

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "vendor-1", event.ActorID)
}
