package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/api/middleware"
	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// stubManager records calls and serves canned results.
type stubManager struct {
	loginUser  *domain.User
	loginErr   error
	loginSIDs  []string
	logoutSIDs []string
}

func (s *stubManager) Login(_ context.Context, sid string, _ ports.Credentials) (*domain.User, error) {
	s.loginSIDs = append(s.loginSIDs, sid)
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginUser, nil
}

func (s *stubManager) Register(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
	return &domain.User{ID: 9, Name: input.Name, Email: input.Email, Role: domain.RoleCustomer}, nil
}

func (s *stubManager) Logout(_ context.Context, sid string) {
	s.logoutSIDs = append(s.logoutSIDs, sid)
}

func (s *stubManager) ForgotPassword(context.Context, string) error { return nil }

func (s *stubManager) ResetPassword(context.Context, string, int64, string) error { return nil }

func (s *stubManager) State(context.Context, string) domain.SessionState {
	return domain.SessionState{}
}

func (s *stubManager) Token(context.Context, string) string { return "" }

func newAuthContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	res := http.Response{Header: rec.Header()}
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLoginSuccess(t *testing.T) {
	manager := &stubManager{loginUser: &domain.User{ID: 7, Name: "Ana", Role: domain.RoleAdmin}}
	h := NewAuthHandler(manager, "techfix_sid", false)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/login",
		`{"email": "ana@techfix.test", "password": "secret123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Authenticated bool         `json:"authenticated"`
		User          *domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Authenticated || resp.User == nil || resp.User.ID != 7 {
		t.Fatalf("response = %+v", resp)
	}

	cookie := sessionCookie(rec, "techfix_sid")
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("no session cookie set")
	}
	if !cookie.HttpOnly || cookie.Path != "/" {
		t.Fatalf("cookie attributes: %+v", cookie)
	}
	if len(manager.loginSIDs) != 1 || manager.loginSIDs[0] != cookie.Value {
		t.Fatalf("cookie sid %q does not match login sid %v", cookie.Value, manager.loginSIDs)
	}
}

// Each login mints a fresh session id even when an old cookie is present.
func TestAuthLoginRotatesSessionID(t *testing.T) {
	manager := &stubManager{loginUser: &domain.User{ID: 7, Role: domain.RoleAdmin}}
	h := NewAuthHandler(manager, "techfix_sid", false)

	c, _ := newAuthContext(t, http.MethodPost, "/auth/login",
		`{"email": "ana@techfix.test", "password": "secret123"}`)
	c.Request().AddCookie(&http.Cookie{Name: "techfix_sid", Value: "stale-sid"})

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(manager.loginSIDs) != 1 || manager.loginSIDs[0] == "stale-sid" {
		t.Fatalf("login reused the stale sid: %v", manager.loginSIDs)
	}
}

func TestAuthLoginRejectedPropagatesAuthError(t *testing.T) {
	manager := &stubManager{
		loginErr: domain.NewAuthError(domain.OpLogin, http.StatusUnauthorized, "Invalid credentials"),
	}
	h := NewAuthHandler(manager, "techfix_sid", false)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/login",
		`{"email": "ana@techfix.test", "password": "wrong"}`)
	err := h.Login(c)

	var ae *domain.AuthError
	if !errors.As(err, &ae) || ae.Message != "Invalid credentials" {
		t.Fatalf("err = %v, want the upstream AuthError", err)
	}
	if cookie := sessionCookie(rec, "techfix_sid"); cookie != nil {
		t.Fatalf("rejected login set a cookie: %+v", cookie)
	}
}

func TestAuthLoginValidation(t *testing.T) {
	h := NewAuthHandler(&stubManager{}, "techfix_sid", false)

	c, _ := newAuthContext(t, http.MethodPost, "/auth/login",
		`{"email": "not-an-email", "password": ""}`)
	err := h.Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestAuthLogoutClearsCookieAndSession(t *testing.T) {
	manager := &stubManager{}
	h := NewAuthHandler(manager, "techfix_sid", false)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/logout", "")
	c.Set(middleware.CtxSessionID, "sid-1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(manager.logoutSIDs) != 1 || manager.logoutSIDs[0] != "sid-1" {
		t.Fatalf("logout sids = %v, want [sid-1]", manager.logoutSIDs)
	}

	cookie := sessionCookie(rec, "techfix_sid")
	if cookie == nil || cookie.MaxAge != -1 || cookie.Value != "" {
		t.Fatalf("cookie not cleared: %+v", cookie)
	}
}

// Logout without a session still clears the cookie and succeeds.
func TestAuthLogoutWithoutSession(t *testing.T) {
	manager := &stubManager{}
	h := NewAuthHandler(manager, "techfix_sid", false)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(manager.logoutSIDs) != 0 {
		t.Fatalf("manager.Logout called with no session: %v", manager.logoutSIDs)
	}
}

func TestAuthSessionReflectsState(t *testing.T) {
	h := NewAuthHandler(&stubManager{}, "techfix_sid", false)

	c, rec := newAuthContext(t, http.MethodGet, "/auth/session", "")
	c.Set(middleware.CtxSession, domain.SessionState{
		IsAuthenticated: true,
		User:            &domain.User{ID: 7, Name: "Ana", Role: domain.RoleTechnician},
	})

	if err := h.Session(c); err != nil {
		t.Fatalf("session: %v", err)
	}

	var resp struct {
		Authenticated bool         `json:"authenticated"`
		User          *domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Authenticated || resp.User == nil || resp.User.Name != "Ana" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestAuthRegisterDoesNotLogIn(t *testing.T) {
	manager := &stubManager{}
	h := NewAuthHandler(manager, "techfix_sid", false)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/register",
		`{"name": "Ana", "email": "ana@techfix.test", "password": "secret123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(manager.loginSIDs) != 0 {
		t.Fatalf("register triggered a login: %v", manager.loginSIDs)
	}
	if cookie := sessionCookie(rec, "techfix_sid"); cookie != nil {
		t.Fatalf("register set a session cookie: %+v", cookie)
	}
}
