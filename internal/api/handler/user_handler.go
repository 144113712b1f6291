package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/api/metrics"
	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// UserHandler proxies staff/user management to the upstream API. Reachable
// only through the admin guard.
type UserHandler struct {
	users ports.UserAPI
}

func NewUserHandler(users ports.UserAPI) *UserHandler {
	return &UserHandler{users: users}
}

type userRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	RoleID   int    `json:"role_id"  validate:"required"`
}

// List handles GET /api/users.
//
// @Summary      List panel users
// @Tags         users
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("users", time.Now())
	users, err := h.users.Users(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("users", time.Now())
	user, err := h.users.User(c.Request().Context(), token, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create handles POST /api/users — the "create technician" admin flow.
//
// @Summary      Create a staff user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userRequest  true  "User details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("users", time.Now())
	user, err := h.users.CreateUser(c.Request().Context(), token, ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, domain.Role(req.RoleID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /api/users/:id.
func (h *UserHandler) Update(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	defer observeUpstream("users", time.Now())
	user, err := h.users.UpdateUser(c.Request().Context(), token, id, ports.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("users", time.Now())
	if err := h.users.DeleteUser(c.Request().Context(), token, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// observeUpstream records one proxied round trip on the upstream histogram.
func observeUpstream(endpoint string, start time.Time) {
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
