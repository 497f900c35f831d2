package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/service"
)

// NotificationWorker delivers notification emails off the request path.
type NotificationWorker struct {
	dispatcher *events.AsyncDispatcher
	logger     *zap.Logger
}

// StartNotificationWorker registers notification handlers and starts the dispatcher workers.
func StartNotificationWorker(dispatcher *events.AsyncDispatcher, notifications *service.NotificationService, workers int, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	notifications.RegisterHandlers()
	dispatcher.Start(workers)
	logger.Info("notification worker started", zap.Int("workers", workers))
	return &NotificationWorker{dispatcher: dispatcher, logger: logger}
}

// Stop drains queued events until ctx expires.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	err := w.dispatcher.Shutdown(ctx)
	if err != nil {
		w.logger.Warn("notification worker stopped with pending events", zap.Error(err))
		return err
	}
	w.logger.Info("notification worker stopped")
	return nil
}
