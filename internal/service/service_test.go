package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/events"
)

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func testCodec(t *testing.T) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec([]byte(strings.Repeat("k", auth.MinKeyBytes)))
	require.NoError(t, err)
	return codec
}

const (
	testAccessTTL  = time.Hour
	testRefreshTTL = 24 * time.Hour
)
