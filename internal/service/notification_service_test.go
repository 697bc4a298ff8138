package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

func TestNotificationService_DeliversWebhook(t *testing.T) {
	received := make(chan events.Event, 1)
	app := fiber.New()
	app.Post("/hook", func(c *fiber.Ctx) error {
		var event events.Event
		if err := c.BodyParser(&event); err != nil {
			return err
		}
		received <- event
		return c.SendStatus(fiber.StatusNoContent)
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	dispatcher := events.NewInMemoryDispatcher()
	notifier := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: srv.URL + "/hook", TimeoutSeconds: 5})
	notifier.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{ID: "e1", Type: events.EventTicketDeleted, TicketID: 9})
	require.NoError(t, err)

	event := <-received
	assert.Equal(t, "e1", event.ID)
	assert.Equal(t, int64(9), event.TicketID)
}

func TestNotificationService_NoWebhookConfigured(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: 1}))
}
