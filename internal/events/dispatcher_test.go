package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_PublishesToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []int64
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("webhook down")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, e.TicketID*10)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 7})
	require.ErrorContains(t, err, "webhook down")
	assert.Equal(t, []int64{7, 70}, got)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketDeleted, TicketID: 7}))
}
