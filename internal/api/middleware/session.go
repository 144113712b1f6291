package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// Context keys set by Session and consumed by guards and handlers.
const (
	CtxSessionID = "session_id"
	CtxSession   = "session"
	CtxToken     = "token"
)

// Session resolves the session cookie into a SessionState and injects it
// into the request context. It runs on every request so guard decisions are
// re-derived on every navigation — a logout from another replica takes
// effect on the very next request, not just on future logins.
func Session(manager ports.SessionManager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if cookie, err := c.Cookie(cookieName); err == nil {
				sid = cookie.Value
			}

			ctx := c.Request().Context()
			state := manager.State(ctx, sid)

			c.Set(CtxSessionID, sid)
			c.Set(CtxSession, state)
			if state.IsAuthenticated {
				c.Set(CtxToken, manager.Token(ctx, sid))
			}

			return next(c)
		}
	}
}

// SessionState extracts the state injected by Session. Missing state (the
// middleware did not run) reads as unauthenticated.
func SessionState(c echo.Context) domain.SessionState {
	state, _ := c.Get(CtxSession).(domain.SessionState)
	return state
}
