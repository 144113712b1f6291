package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/techfix/panel-gateway/internal/api/metrics"
	"github.com/techfix/panel-gateway/internal/api/middleware"
	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Revokes the session and redirects to the login view when the upstream
//     rejected the stored credential (the global 401 interceptor).
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Renders auth-operation failures with their normalized message so forms
//     can show it inline.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(manager ports.SessionManager, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// Upstream said the credential is no longer valid: local trust is
		// revoked everywhere and the user lands on the login view.
		if errors.Is(err, domain.ErrUnauthenticated) {
			if sid, ok := c.Get(middleware.CtxSessionID).(string); ok && sid != "" {
				manager.Logout(c.Request().Context(), sid)
				metrics.LogoutsTotal.WithLabelValues("unauthenticated").Inc()
			}
			_ = c.Redirect(http.StatusFound, middleware.LoginPath)
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Failed login/register/recovery: the normalized message goes back to
	// the form, with a status the caller can branch on.
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		code := http.StatusBadGateway
		if ae.Status >= 400 && ae.Status < 500 {
			code = ae.Status
		}
		return code, ae.Message
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
