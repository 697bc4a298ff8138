package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
	block  chan struct{}
}

func (r *recordingNotifier) Notify(_ context.Context, event events.Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if event.TicketID < 0 {
		return errors.New("bad ticket")
	}
	return nil
}

func TestWorkerDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	notifier := &recordingNotifier{}

	w := StartNotificationWorker(ctx, dispatcher, notifier, zap.NewNop())
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: i}))
	}
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketDeleted, TicketID: -1}))
	w.Stop()

	require.Len(t, notifier.events, 4)
	for i, e := range notifier.events[:3] {
		assert.Equal(t, int64(i+1), e.TicketID)
	}
}

func TestWorkerDropsWhenFull(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{block: make(chan struct{})}
	w := NewNotificationWorker(notifier, nil, 1)

	// not started: the single slot fills and the rest are dropped
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, w.Enqueue(ctx, events.Event{Type: events.EventTicketUpdated, TicketID: i}))
	}
	close(notifier.block)
	w.Start(ctx)
	w.Stop()

	require.Len(t, notifier.events, 1)
	assert.Equal(t, int64(1), notifier.events[0].TicketID)
}

func TestEnqueueAfterStopIsIgnored(t *testing.T) {
	w := NewNotificationWorker(&recordingNotifier{}, nil, 1)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	require.NoError(t, w.Enqueue(context.Background(), events.Event{TicketID: 1}))
}
