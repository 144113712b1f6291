package ports

import (
	"context"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

// Credentials is the login form payload forwarded to the upstream
// Authentication Service.
type Credentials struct {
	Email    string
	Password string
}

// RegisterInput is the new-account payload. Registration does not log the
// user in; callers chain a Login when they want that.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// LoginResult is the pair returned by a successful login: the opaque bearer
// credential and the profile cached next to it.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthAPI is the contract of the external authentication endpoints. Failures
// are always *domain.AuthError; transport details never leak past it.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken string, userID int64, newPassword string) error
}
