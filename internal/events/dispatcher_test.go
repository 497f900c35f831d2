package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAsyncDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 8, time.Second)

	var mu sync.Mutex
	var got []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("mail server down")
	})

	d.Start(2)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketNumber: "SR-20250101-001"}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventDriverAssigned, TicketNumber: "VR-20250101-001"}))
	require.NoError(t, d.Shutdown(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, "SR-20250101-001", got[0].TicketNumber)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestAsyncDispatcherDropsWhenFull(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 1, time.Second)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventOTPRequested}))
	err := d.Publish(context.Background(), Event{Type: EventOTPRequested})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestAsyncDispatcherRejectsAfterShutdown(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 4, time.Second)
	d.Start(1)
	require.NoError(t, d.Shutdown(context.Background()))
	require.NoError(t, d.Shutdown(context.Background()))

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestAsyncDispatcherSurvivesPanickingHandler(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 4, time.Second)
	delivered := make(chan struct{}, 1)
	d.Subscribe(EventChatMessagePosted, func(context.Context, Event) error {
		panic("boom")
	})
	d.Subscribe(EventChatMessagePosted, func(context.Context, Event) error {
		delivered <- struct{}{}
		return nil
	})
	d.Start(1)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventChatMessagePosted}))
	require.NoError(t, d.Shutdown(context.Background()))

	select {
	case <-delivered:
	default:
		t.Fatal("second handler did not run")
	}
}

func TestHandlerContextHasDeadline(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 1, 50*time.Millisecond)
	var hasDeadline bool
	d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, _ Event) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	d.Start(1)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketStatusChanged}))
	require.NoError(t, d.Shutdown(context.Background()))
	assert.True(t, hasDeadline)
}
