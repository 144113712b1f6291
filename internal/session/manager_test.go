package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// stubAuthAPI is a hand-rolled upstream double; each call delegates to the
// corresponding func when set.
type stubAuthAPI struct {
	loginFn    func(ports.Credentials) (*ports.LoginResult, error)
	registerFn func(ports.RegisterInput) (*domain.User, error)
}

func (s *stubAuthAPI) Login(_ context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	return s.loginFn(creds)
}

func (s *stubAuthAPI) Register(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
	if s.registerFn == nil {
		return nil, errors.New("unexpected register call")
	}
	return s.registerFn(input)
}

func (s *stubAuthAPI) ForgotPassword(context.Context, string) error { return nil }

func (s *stubAuthAPI) ResetPassword(context.Context, string, int64, string) error { return nil }

func okLogin(token string, user *domain.User) func(ports.Credentials) (*ports.LoginResult, error) {
	return func(ports.Credentials) (*ports.LoginResult, error) {
		return &ports.LoginResult{Token: token, User: user}, nil
	}
}

func TestManagerLoginEstablishesSession(t *testing.T) {
	store, _ := newTestStore(t)
	auth := &stubAuthAPI{loginFn: okLogin("tok-1", testUser())}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	user, err := m.Login(ctx, "sid-1", ports.Credentials{Email: "ana@techfix.test", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 42 {
		t.Fatalf("user id = %d, want 42", user.ID)
	}

	state := m.State(ctx, "sid-1")
	if !state.IsAuthenticated || state.User == nil || state.User.ID != 42 {
		t.Fatalf("state = %+v, want authenticated user 42", state)
	}
	if tok := m.Token(ctx, "sid-1"); tok != "tok-1" {
		t.Fatalf("token = %q, want tok-1", tok)
	}

	// The pair must also be durable, not just cached.
	credential, profile := store.Read(ctx, "sid-1")
	if credential != "tok-1" || profile == nil {
		t.Fatalf("store pair = (%q, %+v), want saved pair", credential, profile)
	}
}

func TestManagerLoginFailureLeavesStoreUntouched(t *testing.T) {
	store, _ := newTestStore(t)
	auth := &stubAuthAPI{loginFn: func(ports.Credentials) (*ports.LoginResult, error) {
		return nil, domain.NewAuthError(domain.OpLogin, http.StatusUnauthorized, "Invalid credentials")
	}}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	_, err := m.Login(ctx, "sid-1", ports.Credentials{Email: "ana@techfix.test", Password: "bad"})
	var ae *domain.AuthError
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized || ae.Message != "Invalid credentials" {
		t.Fatalf("err = %v, want AuthError 401 Invalid credentials", err)
	}

	if credential, profile := store.Read(ctx, "sid-1"); credential != "" || profile != nil {
		t.Fatalf("failed login wrote to store: (%q, %+v)", credential, profile)
	}
	if state := m.State(ctx, "sid-1"); state.IsAuthenticated {
		t.Fatalf("failed login produced an authenticated state")
	}
}

func TestManagerLogoutIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	auth := &stubAuthAPI{loginFn: okLogin("tok-1", testUser())}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Login(ctx, "sid-1", ports.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	m.Logout(ctx, "sid-1")
	m.Logout(ctx, "sid-1") // repeat must be harmless
	m.Logout(ctx, "never-existed")

	if state := m.State(ctx, "sid-1"); state.IsAuthenticated {
		t.Fatalf("state still authenticated after logout")
	}
	if tok := m.Token(ctx, "sid-1"); tok != "" {
		t.Fatalf("token survived logout: %q", tok)
	}
}

// Two managers sharing one backend model two gateway replicas. A login or
// logout through one must become visible to the other without a restart.
func TestManagersConvergeAcrossSharedBackend(t *testing.T) {
	backend := NewMemoryBackend()
	t.Cleanup(func() { backend.Close() })

	storeA := NewStore(backend, time.Hour, zerolog.Nop())
	storeB := NewStore(backend, time.Hour, zerolog.Nop())
	auth := &stubAuthAPI{loginFn: okLogin("tok-1", testUser())}

	mA := NewManager(storeA, auth, zerolog.Nop())
	defer mA.Close()
	mB := NewManager(storeB, auth, zerolog.Nop())
	defer mB.Close()
	ctx := context.Background()

	if _, err := mA.Login(ctx, "sid-1", ports.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	waitFor(t, func() bool {
		return mB.State(ctx, "sid-1").IsAuthenticated
	})

	// Warm B's cache, then revoke through A; B must converge to logged out
	// via the change notification, not a request-time re-read alone.
	mA.Logout(ctx, "sid-1")

	waitFor(t, func() bool {
		return !mB.State(ctx, "sid-1").IsAuthenticated
	})
}

func TestManagerExpiredCredentialReadsAsLoggedOut(t *testing.T) {
	store, _ := newTestStore(t)
	auth := &stubAuthAPI{loginFn: okLogin("unused", testUser())}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("not-verified-here"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	store.Save(ctx, "sid-1", signed, testUser())

	if state := m.State(ctx, "sid-1"); state.IsAuthenticated {
		t.Fatalf("expired credential produced an authenticated state")
	}
	// Expiry also clears the stored pair.
	if credential, _ := store.Read(ctx, "sid-1"); credential != "" {
		t.Fatalf("expired pair survived in store: %q", credential)
	}
}

// Expiry must be honored on the cache-hit path too, not only on hydration:
// the replica that served the login keeps the session cached and must stop
// reporting it as authenticated once the credential's exp passes.
func TestManagerCachedStateHonorsExpiry(t *testing.T) {
	store, _ := newTestStore(t)

	// exp as fractional seconds keeps the sub-second deadline exact; a
	// whole-second claim could truncate into the past.
	soon := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": float64(time.Now().Add(500*time.Millisecond).UnixNano()) / float64(time.Second),
	})
	signed, err := soon.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	auth := &stubAuthAPI{loginFn: okLogin(signed, testUser())}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Login(ctx, "sid-1", ports.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !m.State(ctx, "sid-1").IsAuthenticated {
		t.Fatalf("fresh session not authenticated")
	}

	// No logout, no store mutation: only the passage of time. The warm
	// cache must expire the session on its own.
	waitFor(t, func() bool {
		return !m.State(ctx, "sid-1").IsAuthenticated
	})
	if tok := m.Token(ctx, "sid-1"); tok != "" {
		t.Fatalf("token survived expiry: %q", tok)
	}
	if credential, _ := store.Read(ctx, "sid-1"); credential != "" {
		t.Fatalf("expired pair survived in store: %q", credential)
	}
}

// Same property, without waiting: a login whose credential is already past
// exp must not be served from the cache entry Login just created.
func TestManagerCacheEntryExpiredAtLogin(t *testing.T) {
	store, _ := newTestStore(t)

	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := stale.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	auth := &stubAuthAPI{loginFn: okLogin(signed, testUser())}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Login(ctx, "sid-1", ports.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if m.State(ctx, "sid-1").IsAuthenticated {
		t.Fatalf("expired credential served from the login cache entry")
	}
}

func TestManagerOpaqueCredentialNeverExpiresLocally(t *testing.T) {
	store, _ := newTestStore(t)
	auth := &stubAuthAPI{loginFn: okLogin("unused", testUser())}
	m := NewManager(store, auth, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	store.Save(ctx, "sid-1", "opaque-token-not-a-jwt", testUser())

	if state := m.State(ctx, "sid-1"); !state.IsAuthenticated {
		t.Fatalf("opaque credential should hydrate as authenticated")
	}
}

func TestCredentialExpired(t *testing.T) {
	now := time.Now()

	fresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := fresh.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if credentialExpired(signed, now) {
		t.Fatalf("future exp reported as expired")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"})
	signed, err = noExp.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if credentialExpired(signed, now) {
		t.Fatalf("token without exp reported as expired")
	}

	if credentialExpired("not-a-jwt", now) {
		t.Fatalf("non-JWT credential reported as expired")
	}
}
