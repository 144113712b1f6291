package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/techfix/panel-gateway/internal/api/middleware"
	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

type stubManager struct {
	logoutSIDs []string
}

func (s *stubManager) Login(context.Context, string, ports.Credentials) (*domain.User, error) {
	return nil, nil
}
func (s *stubManager) Register(context.Context, ports.RegisterInput) (*domain.User, error) {
	return nil, nil
}
func (s *stubManager) Logout(_ context.Context, sid string) {
	s.logoutSIDs = append(s.logoutSIDs, sid)
}
func (s *stubManager) ForgotPassword(context.Context, string) error { return nil }
func (s *stubManager) ResetPassword(context.Context, string, int64, string) error {
	return nil
}
func (s *stubManager) State(context.Context, string) domain.SessionState {
	return domain.SessionState{}
}
func (s *stubManager) Token(context.Context, string) string { return "" }

func handleError(t *testing.T, manager ports.SessionManager, err error, sid string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sid != "" {
		c.Set(middleware.CtxSessionID, sid)
	}

	NewHTTPErrorHandler(manager, zerolog.Nop())(err, c)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

// An upstream 401 on any proxied call revokes the session and sends the
// browser to the login view.
func TestErrorHandlerUnauthenticatedRevokesSession(t *testing.T) {
	manager := &stubManager{}
	rec := handleError(t, manager, domain.ErrUnauthenticated, "sid-1")

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != middleware.LoginPath {
		t.Fatalf("location = %q, want %q", loc, middleware.LoginPath)
	}
	if len(manager.logoutSIDs) != 1 || manager.logoutSIDs[0] != "sid-1" {
		t.Fatalf("logout sids = %v, want [sid-1]", manager.logoutSIDs)
	}
}

func TestErrorHandlerUnauthenticatedWithoutSession(t *testing.T) {
	manager := &stubManager{}
	rec := handleError(t, manager, domain.ErrUnauthenticated, "")

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if len(manager.logoutSIDs) != 0 {
		t.Fatalf("logout called with no session: %v", manager.logoutSIDs)
	}
}

func TestErrorHandlerAuthErrorKeepsStatusAndMessage(t *testing.T) {
	err := domain.NewAuthError(domain.OpLogin, http.StatusUnauthorized, "Invalid credentials")
	rec := handleError(t, &stubManager{}, err, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "Invalid credentials" {
		t.Fatalf("message = %q", msg)
	}
}

// A transport-level auth failure has no upstream status; it renders as a bad
// gateway with the normalized message.
func TestErrorHandlerAuthErrorTransportFailure(t *testing.T) {
	err := domain.NewAuthError(domain.OpLogin, 0, "authentication service unreachable, try again")
	rec := handleError(t, &stubManager{}, err, "")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "authentication service unreachable, try again" {
		t.Fatalf("message = %q", msg)
	}
}

func TestErrorHandlerDomainSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := handleError(t, &stubManager{}, tc.err, "")
		if rec.Code != tc.code {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.code)
		}
	}
}

func TestErrorHandlerEchoErrorsPassThrough(t *testing.T) {
	rec := handleError(t, &stubManager{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "invalid payload" {
		t.Fatalf("message = %q", msg)
	}
}

func TestErrorHandlerUnexpectedErrorIsOpaque(t *testing.T) {
	rec := handleError(t, &stubManager{}, errors.New("pq: connection reset"), "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}
