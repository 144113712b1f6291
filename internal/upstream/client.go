// Package upstream is the typed client of the external TechFix REST API.
// It is the only package that sees upstream transport details: every failure
// leaves here either as a sentinel domain error, a *domain.AuthError, or a
// wrapped transport error with a normalized message.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to the TechFix API. The zero value is not usable; build one
// with New.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the API rooted at baseURL. A default timeout is
// applied when none is provided.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Ping checks that the API answers at all. Any HTTP response counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream ping: %w", err)
	}
	resp.Body.Close()
	return nil
}

// statusError is a non-2xx upstream response with its message already
// extracted by the precedence rule: "message" field, "error" field,
// "HTTP <status>".
type statusError struct {
	Status  int
	Message string
}

func (e *statusError) Error() string { return e.Message }

// do performs one JSON round trip. A non-empty token is attached as a bearer
// header. out may be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("upstream request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("upstream read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Status: resp.StatusCode, Message: extractMessage(raw, resp.StatusCode)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("upstream decode %s %s: %w", method, path, err)
	}
	return nil
}

// resource wraps do for the authenticated resource endpoints, translating
// the statuses the panel reacts to into sentinel domain errors. The 401
// mapping is what lets the central error handler revoke the session.
func (c *Client) resource(ctx context.Context, method, path, token string, body, out any) error {
	err := c.do(ctx, method, path, token, body, out)
	if err == nil {
		return nil
	}
	if se, ok := err.(*statusError); ok {
		switch se.Status {
		case http.StatusUnauthorized:
			return domain.ErrUnauthenticated
		case http.StatusForbidden:
			return domain.ErrForbidden
		case http.StatusNotFound:
			return domain.ErrNotFound
		}
		return fmt.Errorf("upstream %s %s: %s", method, path, se.Message)
	}
	return err
}

// extractMessage picks the human-readable message out of an upstream error
// body: the "message" field wins, then "error", then a plain "HTTP <status>".
// Non-JSON bodies fall through to the status form.
func extractMessage(raw []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
