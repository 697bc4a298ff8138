package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/service"
)

// MetricsHandler reports request counters and ticket totals.
type MetricsHandler struct {
	metrics *observability.Metrics
	tickets *service.TicketService
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics, tickets *service.TicketService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, tickets: tickets}
}

// Summary handles GET /metrics/summary.
func (h *MetricsHandler) Summary(c *fiber.Ctx) error {
	all, err := h.tickets.List(c.UserContext(), service.TicketListFilter{})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"http":    h.metrics.Snapshot(),
		"tickets": query.Summarize(all),
	})
}
