package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AIHandler proxies prompts to the text generation service.
type AIHandler struct {
	textgen *service.TextGenService
}

// NewAIHandler constructs handler.
func NewAIHandler(textgen *service.TextGenService) *AIHandler {
	return &AIHandler{textgen: textgen}
}

// Respond handles POST /api/ai-response.
func (h *AIHandler) Respond(c *fiber.Ctx) error {
	var req dto.AIRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	text, err := h.textgen.Complete(c.UserContext(), req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(dto.AIResponse{Response: text})
}
