package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// Manager is the process-wide session context: the sole writer of the Store
// and the only place handlers obtain session state from. It keeps a cache of
// hydrated states and re-hydrates entries when the Store reports a mutation,
// so a logout through any replica is reflected here without a restart.
type Manager struct {
	store *Store
	auth  ports.AuthAPI
	log   zerolog.Logger

	mu     sync.RWMutex
	cache  map[string]cachedSession
	cancel func()
}

type cachedSession struct {
	token string
	user  *domain.User
	// expiresAt is the credential's exp claim; zero when the credential
	// is not a JWT or carries no exp.
	expiresAt time.Time
}

func (e cachedSession) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && e.expiresAt.Before(now)
}

// NewManager builds the Manager and subscribes it to store changes.
// Call Close when done to drop the subscription.
func NewManager(store *Store, auth ports.AuthAPI, log zerolog.Logger) *Manager {
	m := &Manager{
		store: store,
		auth:  auth,
		log:   log,
		cache: make(map[string]cachedSession),
	}
	m.cancel = store.Subscribe(m.onChange)
	return m
}

// Close drops the store subscription.
func (m *Manager) Close() {
	m.cancel()
}

// Live reports how many sessions this replica currently holds hydrated.
func (m *Manager) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// Login exchanges credentials with the upstream Authentication Service and,
// on success, persists the returned pair and caches the hydrated state. On
// failure the store is left untouched and the *domain.AuthError from the
// upstream client is returned as-is.
//
// The profile is returned so the caller can branch on role for post-login
// navigation.
func (m *Manager) Login(ctx context.Context, sid string, creds ports.Credentials) (*domain.User, error) {
	result, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	m.store.Save(ctx, sid, result.Token, result.User)

	m.mu.Lock()
	m.cache[sid] = cachedSession{
		token:     result.Token,
		user:      result.User,
		expiresAt: credentialDeadline(result.Token),
	}
	m.mu.Unlock()

	m.log.Info().Str("sid", sid).Int64("user_id", result.User.ID).
		Stringer("role", result.User.Role).Msg("session established")
	return result.User, nil
}

// Register creates an account upstream. It does not log the user in; callers
// chain Login when they want that.
func (m *Manager) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return m.auth.Register(ctx, input)
}

// Logout revokes local trust: the stored pair is cleared and the cache entry
// dropped. No upstream call is made. Idempotent.
func (m *Manager) Logout(ctx context.Context, sid string) {
	m.store.Clear(ctx, sid)

	m.mu.Lock()
	delete(m.cache, sid)
	m.mu.Unlock()

	m.log.Info().Str("sid", sid).Msg("session cleared")
}

// ForgotPassword and ResetPassword are thin pass-throughs; they share the
// upstream client's error shaping and nothing else.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.auth.ForgotPassword(ctx, email)
}

func (m *Manager) ResetPassword(ctx context.Context, resetToken string, userID int64, newPassword string) error {
	return m.auth.ResetPassword(ctx, resetToken, userID, newPassword)
}

// State returns the derived session state for sid, hydrating from the store
// on a cache miss so a freshly started replica recognizes live sessions
// immediately. A cached credential whose deadline has passed reads as
// logged out; the entry is evicted and the durable pair cleared through the
// hydration path.
func (m *Manager) State(ctx context.Context, sid string) domain.SessionState {
	if sid == "" {
		return domain.SessionState{}
	}

	entry, ok := m.cached(sid)
	if !ok {
		entry, ok = m.hydrate(ctx, sid)
	}
	if !ok {
		return domain.SessionState{}
	}
	return domain.SessionState{IsAuthenticated: true, User: entry.user}
}

// Token returns the bearer credential for sid, or "" when unauthenticated.
func (m *Manager) Token(ctx context.Context, sid string) string {
	if sid == "" {
		return ""
	}

	entry, ok := m.cached(sid)
	if !ok {
		entry, ok = m.hydrate(ctx, sid)
	}
	if !ok {
		return ""
	}
	return entry.token
}

// cached returns the live cache entry for sid. An entry past its credential
// deadline is evicted and reported as a miss, so the caller falls through to
// hydrate, which clears the durable pair too.
func (m *Manager) cached(sid string) (cachedSession, bool) {
	m.mu.RLock()
	entry, ok := m.cache[sid]
	m.mu.RUnlock()
	if !ok {
		return cachedSession{}, false
	}
	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.cache, sid)
		m.mu.Unlock()
		return cachedSession{}, false
	}
	return entry, true
}

// hydrate reads the stored pair and caches it when it amounts to a live
// session. A half-present pair (corrupt profile) or an expired credential is
// treated as logged out; expiry additionally clears the stored pair.
// Only live sessions are cached so arbitrary session ids cannot grow the map.
func (m *Manager) hydrate(ctx context.Context, sid string) (cachedSession, bool) {
	credential, profile := m.store.Read(ctx, sid)
	if credential == "" || profile == nil {
		return cachedSession{}, false
	}
	if credentialExpired(credential, time.Now()) {
		m.log.Debug().Str("sid", sid).Msg("stored credential expired, clearing session")
		m.store.Clear(ctx, sid)
		return cachedSession{}, false
	}

	entry := cachedSession{
		token:     credential,
		user:      profile,
		expiresAt: credentialDeadline(credential),
	}
	m.mu.Lock()
	m.cache[sid] = entry
	m.mu.Unlock()
	return entry, true
}

// onChange runs on every store mutation, including those from other
// replicas. It re-hydrates eagerly so cached state converges without waiting
// for the next request.
func (m *Manager) onChange(sid string) {
	m.mu.Lock()
	delete(m.cache, sid)
	m.mu.Unlock()

	m.hydrate(context.Background(), sid)
}

// credentialDeadline inspects the credential's exp claim without verifying
// the signature — signature trust stays with the upstream API. Credentials
// that are not JWTs, or carry no exp, return the zero time and never expire
// locally.
func credentialDeadline(credential string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func credentialExpired(credential string, now time.Time) bool {
	deadline := credentialDeadline(credential)
	return !deadline.IsZero() && deadline.Before(now)
}
