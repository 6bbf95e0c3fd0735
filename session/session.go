package session

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fleetwatch/fleet"
)

// Persisted entry keys. Each is independently readable and removable.
const (
	KeyToken   = "fw_auth_token"
	KeyUser    = "fw_user_data"
	KeyExpiry  = "fw_session_expiry"
	tokenValue = "session_active"
)

// ExpiryState is the result of the pure expiry query.
type ExpiryState int

const (
	Valid ExpiryState = iota
	Expired
)

// CheckExpiry compares a stored absolute expiry instant against now. It is
// a pure query; callers decide whether to follow an Expired answer with an
// explicit Logout.
func CheckExpiry(expiry time.Time, now time.Time) ExpiryState {
	if now.Before(expiry) {
		return Valid
	}
	return Expired
}

// Authenticator is the network half of the session lifecycle. fleet.Client
// satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*fleet.User, error)
	Logout(ctx context.Context) error
}

// Store tracks whether the local user is considered authenticated,
// independent of whether the relay still honors the underlying credential.
// Session records are replace-only: login writes all three entries, logout
// removes all three, nothing updates one in isolation.
type Store struct {
	kv       KV
	auth     Authenticator
	duration time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewStore creates a session store persisting to kv. duration is how long a
// freshly created session stays valid.
func NewStore(kv KV, auth Authenticator, duration time.Duration) *Store {
	return &Store{
		kv:       kv,
		auth:     auth,
		duration: duration,
		now:      time.Now,
		log:      zap.L(),
	}
}

// Login validates the credentials locally, submits them, and on success
// persists the session record and sanitized profile. The secret is never
// retained.
func (s *Store) Login(ctx context.Context, email, password string) (*fleet.User, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" {
		return nil, &fleet.ValidationError{Field: "email", Msg: "must not be empty"}
	}
	if password == "" {
		return nil, &fleet.ValidationError{Field: "password", Msg: "must not be empty"}
	}

	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	// The token goes last so a partial write never looks authenticated; a
	// failure rolls the earlier entries back to keep the record all-or-nothing.
	expiry := s.now().Add(s.duration)
	if err := s.kv.Set(KeyUser, string(profile)); err != nil {
		s.kv.Delete(KeyUser)
		return nil, err
	}
	if err := s.kv.Set(KeyExpiry, strconv.FormatInt(expiry.UnixMilli(), 10)); err != nil {
		s.kv.Delete(KeyUser)
		s.kv.Delete(KeyExpiry)
		return nil, err
	}
	if err := s.kv.Set(KeyToken, tokenValue); err != nil {
		s.kv.Delete(KeyUser)
		s.kv.Delete(KeyExpiry)
		s.kv.Delete(KeyToken)
		return nil, err
	}
	s.log.Info("session created",
		zap.Int("userId", user.ID),
		zap.Time("expiry", expiry))
	return user, nil
}

// IsAuthenticated reports whether a live session exists: token present, the
// expiry instant not passed, and the stored profile not disabled. The check
// is side-effect-free; RequireAuth performs the logout on a false answer.
func (s *Store) IsAuthenticated() bool {
	if token, ok := s.kv.Get(KeyToken); !ok || token != tokenValue {
		return false
	}
	user := s.CurrentUser()
	if user == nil || user.Disabled {
		return false
	}
	expiry, ok := s.Expiry()
	if !ok {
		return false
	}
	return CheckExpiry(expiry, s.now()) == Valid
}

// CurrentUser returns the persisted sanitized profile, or nil.
func (s *Store) CurrentUser() *fleet.User {
	raw, ok := s.kv.Get(KeyUser)
	if !ok {
		return nil
	}
	var user fleet.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

// IsAdmin reports whether the persisted profile carries the admin flag.
func (s *Store) IsAdmin() bool {
	user := s.CurrentUser()
	return user != nil && user.Administrator
}

// Expiry returns the stored absolute expiry instant.
func (s *Store) Expiry() (time.Time, bool) {
	raw, ok := s.kv.Get(KeyExpiry)
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// Logout clears all persisted session state and best-effort notifies the
// relay's session-delete endpoint; notification failure is swallowed.
func (s *Store) Logout(ctx context.Context) {
	s.kv.Delete(KeyToken)
	s.kv.Delete(KeyUser)
	s.kv.Delete(KeyExpiry)
	if s.auth != nil {
		if err := s.auth.Logout(ctx); err != nil {
			s.log.Debug("logout notification failed", zap.Error(err))
		}
	}
}

// RequireAuth guards protected operations. On a dead session it performs
// the explicit logout and returns fleet.ErrSessionExpired so callers can
// redirect to the login view.
func (s *Store) RequireAuth(ctx context.Context) error {
	if s.IsAuthenticated() {
		return nil
	}
	s.Logout(ctx)
	return fleet.ErrSessionExpired
}
