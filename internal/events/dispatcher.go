package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when an event is dropped because every worker is busy.
	ErrQueueFull = errors.New("event queue full")
	// ErrDispatcherClosed is returned by Publish after Shutdown.
	ErrDispatcherClosed = errors.New("event dispatcher closed")
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// AsyncDispatcher queues events and runs their handlers on worker goroutines.
// Publish never waits for a handler.
type AsyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	closed    bool
	wg        sync.WaitGroup
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAsyncDispatcher creates a dispatcher with a bounded queue. timeout bounds each handler call.
func NewAsyncDispatcher(logger *zap.Logger, queueSize int, timeout time.Duration) *AsyncDispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &AsyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, queueSize),
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Subscribe registers a handler for the given event type.
func (d *AsyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Publish enqueues the event. A full queue drops it.
func (d *AsyncDispatcher) Publish(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- event:
		return nil
	default:
		d.logger.Warn("event dropped, queue full",
			zap.String("event", string(event.Type)),
			zap.String("ticket_number", event.TicketNumber),
			zap.Int("capacity", cap(d.queue)),
		)
		return ErrQueueFull
	}
}

// Start launches workers that drain the queue until Shutdown.
func (d *AsyncDispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for event := range d.queue {
				d.dispatch(event)
			}
		}()
	}
}

// Shutdown stops accepting events and waits for queued ones to be handled, or for ctx to end.
func (d *AsyncDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) dispatch(event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := d.run(handler, event); err != nil {
			d.logger.Error("event handler failed",
				zap.String("event", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.String("ticket_number", event.TicketNumber),
				zap.Error(err),
			)
		}
	}
}

// run calls one handler under its own timeout, detached from the publishing request.
func (d *AsyncDispatcher) run(handler EventHandler, event Event) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return handler(ctx, event)
}
