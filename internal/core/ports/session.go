package ports

import (
	"context"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

// SessionManager is the single writer of session state. Handlers and
// middleware consume it; nothing else touches the session store.
type SessionManager interface {
	Login(ctx context.Context, sid string, creds Credentials) (*domain.User, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Logout(ctx context.Context, sid string)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken string, userID int64, newPassword string) error
	State(ctx context.Context, sid string) domain.SessionState
	Token(ctx context.Context, sid string) string
}
