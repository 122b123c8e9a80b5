package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/auth/domain"
	"github.com/Tokarsky98/GroceryMartAI/internal/auth/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewMemoryRepository(), []byte("test-secret"), slog.New(slog.DiscardHandler))
}

func TestRegisterAndLogin(t *testing.T) {
	s := setupAuth(t)
	ctx := context.Background()

	user, token, err := s.Register(ctx, "new@grocery.com", "Secret123!", "New User")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "Secret123!", user.PasswordHash, "password must be hashed")

	loggedIn, loginToken, err := s.Login(ctx, "new@grocery.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := setupAuth(t)
	ctx := context.Background()

	_, _, err := s.Register(ctx, "dup@grocery.com", "Secret123!", "First")
	require.NoError(t, err)

	_, _, err = s.Register(ctx, "DUP@grocery.com", "Other456!", "Second")
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := setupAuth(t)
	ctx := context.Background()

	_, _, err := s.Register(ctx, "a@grocery.com", "Secret123!", "A")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "a@grocery.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error.
	_, _, err = s.Login(ctx, "nobody@grocery.com", "Secret123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken_RoundTrip(t *testing.T) {
	s := setupAuth(t)
	ctx := context.Background()

	user, token, err := s.Register(ctx, "claims@grocery.com", "Secret123!", "C")
	require.NoError(t, err)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "claims@grocery.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestParseToken_Expired(t *testing.T) {
	s := setupAuth(t)
	ctx := context.Background()

	_, token, err := s.Register(ctx, "old@grocery.com", "Secret123!", "O")
	require.NoError(t, err)

	// Move the clock past the 24h TTL.
	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	s := setupAuth(t)
	other := NewAuthService(repository.NewMemoryRepository(), []byte("another-secret"), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	_, token, err := s.Register(ctx, "x@grocery.com", "Secret123!", "X")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSeed_StockAccounts(t *testing.T) {
	s := setupAuth(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx), "seeding twice is harmless")

	admin, _, err := s.Login(ctx, "admin@grocery.com", "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	user, _, err := s.Login(ctx, "user@grocery.com", "User123!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}
