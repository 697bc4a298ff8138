package textgen

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/config"
)

func newUpstream(t *testing.T, handler fiber.Handler) *Client {
	t.Helper()
	app := fiber.New()
	app.Post("/v1/chat/completions", handler)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return NewClient(config.TextGenConfig{BaseURL: srv.URL + "/v1/", APIKey: "k", Model: "m", TimeoutSeconds: 5})
}

func TestClient_Complete(t *testing.T) {
	client := newUpstream(t, func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return err
		}
		if c.Get(fiber.HeaderAuthorization) != "Bearer k" || req.Model != "m" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"choices": []fiber.Map{
			{"message": fiber.Map{"role": "assistant", "content": "echo: " + req.Messages[0].Content}},
		}})
	})

	out, err := client.Complete(context.Background(), "reset my password")
	require.NoError(t, err)
	assert.Equal(t, "echo: reset my password", out)
}

func TestClient_EmptyChoices(t *testing.T) {
	client := newUpstream(t, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"choices": []fiber.Map{}})
	})

	_, err := client.Complete(context.Background(), "hi")
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_UpstreamFailure(t *testing.T) {
	client := newUpstream(t, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
}
