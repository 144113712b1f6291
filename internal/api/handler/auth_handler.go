package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/api/metrics"
	"github.com/techfix/panel-gateway/internal/api/middleware"
	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// AuthHandler exposes the session operations. It never touches the session
// store directly; everything goes through the manager.
type AuthHandler struct {
	manager    ports.SessionManager
	cookieName string
	secure     bool
}

func NewAuthHandler(manager ports.SessionManager, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{manager: manager, cookieName: cookieName, secure: secure}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	UserID   int64  `json:"user_id"  validate:"required,gt=0"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// Login authenticates against the upstream and establishes a session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A fresh session id on every login; an old cookie never outlives the
	// credentials it was issued for.
	sid := uuid.NewString()
	user, err := h.manager.Login(c.Request().Context(), sid, ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var ae *domain.AuthError
		if errors.As(err, &ae) && ae.Status != 0 {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(c, sid, 0)
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: true, User: user})
}

// Register creates an account upstream. The caller stays logged out; the SPA
// decides whether to chain a login.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.manager.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{User: user})
}

// Logout revokes the session. Local only, no upstream call; idempotent.
//
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid, ok := c.Get(middleware.CtxSessionID).(string); ok && sid != "" {
		h.manager.Logout(c.Request().Context(), sid)
		metrics.LogoutsTotal.WithLabelValues("user").Inc()
	}
	h.setSessionCookie(c, "", -time.Hour)
	return c.NoContent(http.StatusNoContent)
}

// Session reports the current authentication state, letting the SPA restore
// its view after a reload without a login round trip.
//
// @Summary      Current session state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	state := middleware.SessionState(c)
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: state.IsAuthenticated,
		User:          state.User,
	})
}

// ForgotPassword starts a recovery flow.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.manager.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword completes a recovery flow.
//
// @Summary      Reset the password with an emailed token
// @Tags         auth
// @Accept       json
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.manager.ResetPassword(c.Request().Context(), req.Token, req.UserID, req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, sid string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)
}
