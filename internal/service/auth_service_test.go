package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(
		config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		AuthDependencies{UserRepo: repository.NewSQLiteUserRepository(newTestDB(t).DB)},
	)
}

func TestAuthService_RegisterLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw", Role: "agent"}))

	result, err := svc.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.User.Name)
	assert.Equal(t, "agent", result.User.Role)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	input := RegisterInput{Name: "A", Email: "a@example.com", Password: "pw", Role: "user"}

	require.NoError(t, svc.Register(ctx, input))
	err := svc.Register(ctx, input)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "Email already exists", de.Message)
}

func TestAuthService_Validation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com"})
	assert.Equal(t, "All fields are required", apperrors.ToDomainError(err).Message)

	_, err = svc.Login(ctx, "", "pw")
	assert.Equal(t, "All fields are required", apperrors.ToDomainError(err).Message)
}

func TestAuthService_InvalidCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "pw", Role: "user"}))

	for _, tc := range []struct{ email, password string }{
		{"a@example.com", "wrong"},
		{"nobody@example.com", "pw"},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
		assert.Equal(t, "Invalid credentials", de.Message)
	}
}
