package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/techfix/panel-gateway/internal/api/middleware"
	"github.com/techfix/panel-gateway/internal/core/domain"
)

// ctxSession extracts the state and bearer token injected by the session
// middleware and fast-fails before any upstream call: a guarded handler
// running without an authenticated session means the guard chain was
// misconfigured — reject rather than forward an unauthenticated request.
func ctxSession(c echo.Context) (domain.SessionState, string, error) {
	state := middleware.SessionState(c)
	if !state.IsAuthenticated || state.User == nil {
		return domain.SessionState{}, "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	token, _ := c.Get(middleware.CtxToken).(string)
	if token == "" {
		return domain.SessionState{}, "", echo.NewHTTPError(http.StatusUnauthorized, "session missing credential")
	}

	return state, token, nil
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64(name, &id).BindError(); err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
