// Package httpx runs outbound requests through fiber's client agent.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StatusError is returned by Do for responses outside 2xx.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// Do sends the prepared agent and decodes a 2xx JSON body into out (when out
// is non-nil). The effective timeout is the smaller of timeout and the time
// left on ctx. The agent is released in every case.
func Do(ctx context.Context, agent *fiber.Agent, timeout time.Duration, out any) (int, error) {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return status, errors.Join(errs...)
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return status, &StatusError{Status: status, Body: body}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return status, fmt.Errorf("decode response: %w", err)
		}
	}
	return status, nil
}
