// Package worker moves slow side effects off the request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/service"
)

// Notifier delivers one event.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// NotificationWorker queues ticket events and delivers them on a single
// background goroutine. When the queue is full new events are dropped and
// logged.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewNotificationWorker creates a worker with room for buffer pending events.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, buffer),
		done:     make(chan struct{}),
	}
}

// StartNotificationWorker subscribes a new worker to every ticket event on
// dispatcher and starts it.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifier, logger, 0)
	for _, t := range service.TicketEvents {
		dispatcher.Subscribe(t, w.Enqueue)
	}
	w.Start(ctx)
	return w
}

// Enqueue is an events.EventHandler. It never blocks.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID))
	}
	return nil
}

// Start delivers queued events until Stop is called. ctx is passed to every
// delivery.
func (w *NotificationWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for event := range w.queue {
			if err := w.notifier.Notify(ctx, event); err != nil {
				w.logger.Warn("notification failed",
					zap.String("event_type", string(event.Type)),
					zap.Int64("ticket_id", event.TicketID),
					zap.Error(err))
			}
		}
	}()
}

// Stop stops accepting events and waits until the queue is drained.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}
