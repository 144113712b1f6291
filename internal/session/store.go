package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

const (
	keyPrefix   = "techfix:session:"
	tokenSuffix = ":token"
	userSuffix  = ":user"
)

// Store owns the persisted (credential, profile) pair. The two durable keys
// for a session are always written and removed together, and every operation
// is serialized behind a mutex, so no reader in this process ever observes a
// credential without its paired profile or vice versa.
//
// No other package serializes or parses the stored representation; keeping
// the corruption-tolerance policy here is the point of the type.
type Store struct {
	backend  Backend
	fallback *MemoryBackend
	ttl      time.Duration
	log      zerolog.Logger
	mu       sync.Mutex
}

// NewStore builds a Store over backend. ttl bounds how long an untouched
// session survives in durable storage; zero means no expiry.
//
// Backend failures never propagate to callers: writes fall back to a
// process-local memory backend, which keeps the current replica working
// (with no cross-replica visibility) while the backend is down.
func NewStore(backend Backend, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		backend:  backend,
		fallback: NewMemoryBackend(),
		ttl:      ttl,
		log:      log,
	}
}

// Save persists the pair for sid. The credential's authenticity is not
// checked here; that trust boundary is the upstream Authentication Service.
func (s *Store) Save(ctx context.Context, sid, credential string, profile *domain.User) {
	raw, err := json.Marshal(profile)
	if err != nil {
		s.log.Error().Err(err).Str("sid", sid).Msg("session profile marshal failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The user record goes first so the token key, which subscribers key
	// off, is only visible once its pair is in place.
	s.set(ctx, s.userKey(sid), string(raw))
	s.set(ctx, s.tokenKey(sid), credential)
}

// Read returns the last-saved pair for sid, or zero values when the session
// was never saved or has been cleared. A malformed stored profile is logged
// and reported as a nil profile; it never fails the caller.
func (s *Store) Read(ctx context.Context, sid string) (string, *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, ok := s.get(ctx, s.tokenKey(sid))
	if !ok {
		return "", nil
	}

	raw, ok := s.get(ctx, s.userKey(sid))
	if !ok {
		return credential, nil
	}

	var profile domain.User
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.log.Warn().Err(err).Str("sid", sid).Msg("corrupt session profile, treating as absent")
		return credential, nil
	}
	return credential, &profile
}

// Clear removes both keys. Idempotent.
func (s *Store) Clear(ctx context.Context, sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tk, uk := s.tokenKey(sid), s.userKey(sid)
	if err := s.backend.Del(ctx, tk, uk); err != nil {
		s.log.Warn().Err(err).Str("sid", sid).Msg("session clear failed on backend, degrading to memory")
	}
	// Always sweep the fallback: a pair written while the backend was down
	// must not outlive the logout. The fallback stays silent when it holds
	// nothing, so the healthy path still yields a single notification.
	_ = s.fallback.Del(ctx, tk, uk)
}

// Subscribe registers fn to run when a session is mutated through this
// store's backend — including by other gateway replicas. Exactly one call is
// made per Save/Clear (keyed off the token key, which both always touch).
func (s *Store) Subscribe(fn func(sid string)) (cancel func()) {
	filter := func(key string) {
		if sid, ok := sidFromKey(key); ok {
			fn(sid)
		}
	}
	cancelBackend := s.backend.Subscribe(filter)
	cancelFallback := s.fallback.Subscribe(filter)
	return func() {
		cancelBackend()
		cancelFallback()
	}
}

func (s *Store) set(ctx context.Context, key, value string) {
	if err := s.backend.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("session write failed on backend, degrading to memory")
		_ = s.fallback.Set(ctx, key, value, s.ttl)
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	val, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("session read failed on backend, trying memory")
		val, ok, _ = s.fallback.Get(ctx, key)
	}
	return val, ok
}

func (s *Store) tokenKey(sid string) string { return keyPrefix + sid + tokenSuffix }
func (s *Store) userKey(sid string) string  { return keyPrefix + sid + userSuffix }

// sidFromKey recovers the session id from a token key. User-key events are
// ignored so one logical mutation yields one notification.
func sidFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, keyPrefix) || !strings.HasSuffix(key, tokenSuffix) {
		return "", false
	}
	sid := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), tokenSuffix)
	return sid, sid != ""
}
