package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/textgen"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TextGenService proxies prompts to the text generation collaborator. Every
// upstream failure is reported to callers as the same generic error.
type TextGenService struct {
	completer textgen.Completer
	logger    *zap.Logger
}

// NewTextGenService constructs the service.
func NewTextGenService(completer textgen.Completer, logger *zap.Logger) *TextGenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextGenService{completer: completer, logger: logger}
}

// Complete returns generated text for prompt.
func (s *TextGenService) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperrors.NewValidationError("Prompt is required")
	}
	if s.completer == nil {
		return "", apperrors.NewUpstreamError("AI request failed", nil)
	}
	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("text generation failed", zap.Error(err))
		return "", apperrors.NewUpstreamError("AI request failed", err)
	}
	return text, nil
}
