package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/api/metrics"
	"github.com/techfix/panel-gateway/internal/guard"
)

// Redirect targets for rejected navigations. RedirectToUnauthorized is
// distinct from RedirectToLogin: the user is known, just not entitled.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/403"
)

// Guard enforces a route requirement on every request in the group. The
// decision itself is pure (guard.Decide); this adapter only maps it onto
// HTTP redirects.
func Guard(req guard.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := guard.Decide(SessionState(c), req)
			metrics.GuardDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case guard.RedirectToLogin:
				return c.Redirect(http.StatusFound, LoginPath)
			case guard.RedirectToUnauthorized:
				return c.Redirect(http.StatusFound, UnauthorizedPath)
			}
			return next(c)
		}
	}
}
