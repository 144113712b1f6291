package upstream

import (
	"context"
	"errors"
	"net/http"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// transportFailureMessage is the generic fallback shown when the auth
// service cannot be reached at all; the underlying cause is logged, never
// surfaced to forms.
const transportFailureMessage = "authentication service unreachable, try again"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type registerResponse struct {
	User *domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	}, &resp)
	if err != nil {
		return nil, c.authError(domain.OpLogin, err)
	}
	if resp.Token == "" || resp.User == nil {
		// A 2xx without the pair is an upstream contract violation; treat
		// it like any other rejected login.
		return nil, domain.NewAuthError(domain.OpLogin, 0, "malformed login response")
	}
	return &ports.LoginResult{Token: resp.Token, User: resp.User}, nil
}

// Register creates an account. The upstream may or may not return a token;
// only the profile is used, per the "registration does not log in" contract.
func (c *Client) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	var resp registerResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
	}, &resp)
	if err != nil {
		return nil, c.authError(domain.OpRegister, err)
	}
	if resp.User == nil {
		return nil, domain.NewAuthError(domain.OpRegister, 0, "malformed registration response")
	}
	return resp.User, nil
}

// ForgotPassword asks the upstream to start a recovery flow for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", "",
		map[string]string{"email": email}, nil)
	if err != nil {
		return c.authError(domain.OpForgotPassword, err)
	}
	return nil
}

// ResetPassword completes a recovery flow with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, resetToken string, userID int64, newPassword string) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", "", map[string]any{
		"token":    resetToken,
		"user_id":  userID,
		"password": newPassword,
	}, nil)
	if err != nil {
		return c.authError(domain.OpResetPassword, err)
	}
	return nil
}

// authError normalizes any failure from do into a *domain.AuthError. The
// message precedence for non-2xx responses is handled in extractMessage;
// everything else is a transport failure with the generic message.
func (c *Client) authError(op domain.AuthOp, err error) *domain.AuthError {
	var se *statusError
	if errors.As(err, &se) {
		return domain.NewAuthError(op, se.Status, se.Message)
	}
	c.log.Warn().Err(err).Str("op", string(op)).Msg("auth request transport failure")
	return domain.NewAuthError(op, 0, transportFailureMessage)
}
