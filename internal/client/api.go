package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/httpx"
)

// API is the server surface the session talks to.
type API interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.UserRegisterRequest) error
	ListUsers(ctx context.Context) ([]domain.Agent, error)
	ListTickets(ctx context.Context, agent, status string) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, req dto.CreateTicketRequest) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error
	Complete(ctx context.Context, prompt string) (string, error)
	SetToken(token string)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// HTTPAPI implements API over the helpdesk REST endpoints.
type HTTPAPI struct {
	baseURL string
	timeout time.Duration
	token   string
}

// NewHTTPAPI targets the server at baseURL. timeout bounds each call.
func NewHTTPAPI(baseURL string, timeout time.Duration) *HTTPAPI {
	return &HTTPAPI{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// SetToken sets the bearer token sent with every request. Empty disables it.
func (a *HTTPAPI) SetToken(token string) {
	a.token = token
}

func (a *HTTPAPI) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	agent := fiber.Post(a.baseURL + "/login").JSON(dto.UserLoginRequest{Email: email, Password: password})
	if err := a.do(ctx, agent, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *HTTPAPI) Register(ctx context.Context, req dto.UserRegisterRequest) error {
	return a.do(ctx, fiber.Post(a.baseURL+"/register").JSON(req), nil)
}

func (a *HTTPAPI) ListUsers(ctx context.Context) ([]domain.Agent, error) {
	var users []dto.UserResponse
	if err := a.do(ctx, fiber.Get(a.baseURL+"/users"), &users); err != nil {
		return nil, err
	}
	agents := make([]domain.Agent, 0, len(users))
	for _, u := range users {
		agents = append(agents, domain.Agent{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return agents, nil
}

func (a *HTTPAPI) ListTickets(ctx context.Context, agent, status string) ([]domain.Ticket, error) {
	q := url.Values{}
	if agent != "" && agent != domain.FilterAll {
		q.Set("agent", agent)
	}
	if status != "" && status != domain.FilterAll {
		q.Set("status", status)
	}
	target := a.baseURL + "/tickets"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	tickets := []domain.Ticket{}
	if err := a.do(ctx, fiber.Get(target), &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (a *HTTPAPI) CreateTicket(ctx context.Context, req dto.CreateTicketRequest) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := a.do(ctx, fiber.Post(a.baseURL+"/tickets").JSON(req), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (a *HTTPAPI) UpdateTicket(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	var ticket domain.Ticket
	agent := fiber.Put(a.ticketURL(id)).JSON(dto.UpdateRequestFromPatch(patch))
	if err := a.do(ctx, agent, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (a *HTTPAPI) DeleteTicket(ctx context.Context, id int64) error {
	return a.do(ctx, fiber.Delete(a.ticketURL(id)), nil)
}

func (a *HTTPAPI) Complete(ctx context.Context, prompt string) (string, error) {
	var resp dto.AIResponse
	if err := a.do(ctx, fiber.Post(a.baseURL+"/api/ai-response").JSON(dto.AIRequest{Prompt: prompt}), &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (a *HTTPAPI) ticketURL(id int64) string {
	return a.baseURL + "/tickets/" + strconv.FormatInt(id, 10)
}

func (a *HTTPAPI) do(ctx context.Context, agent *fiber.Agent, out any) error {
	if a.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+a.token)
	}
	_, err := httpx.Do(ctx, agent, a.timeout, out)

	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) {
		apiErr := &APIError{Status: statusErr.Status}
		var body dto.ErrorResponse
		if json.Unmarshal(statusErr.Body, &body) == nil {
			apiErr.Message = body.Message
		}
		return apiErr
	}
	return err
}
