package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestTextGenService(t *testing.T) {
	ok := NewTextGenService(completerFunc(func(_ context.Context, p string) (string, error) {
		return "re: " + p, nil
	}), nil)
	out, err := ok.Complete(context.Background(), "  hello ")
	require.NoError(t, err)
	assert.Equal(t, "re: hello", out)

	_, err = ok.Complete(context.Background(), " ")
	assert.True(t, apperrors.IsValidation(err))

	failing := NewTextGenService(completerFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}), nil)
	_, err = failing.Complete(context.Background(), "hello")
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	assert.Equal(t, "AI request failed", de.Message)
}
