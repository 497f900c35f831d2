package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/mail"
	"github.com/aarnav1729/premier-support-hub/internal/service"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func TestWorkerDeliversQueuedEvents(t *testing.T) {
	dispatcher := events.NewAsyncDispatcher(zap.NewNop(), 8, time.Second)
	mailer := &captureMailer{}
	renderer, err := mail.NewRenderer()
	require.NoError(t, err)
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Renderer:   renderer,
	})

	w := StartNotificationWorker(dispatcher, notifications, 2, zap.NewNop())
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventOTPRequested,
		Payload: events.OTPRequestedPayload{
			Email:     "asha@example.com",
			Code:      "012345",
			ExpiresAt: time.Now().Add(5 * time.Minute),
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"asha@example.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, "012345")
}
