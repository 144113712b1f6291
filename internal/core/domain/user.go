package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	// ErrUnauthenticated signals that the upstream API rejected the stored
	// credential (HTTP 401). The central error handler reacts by clearing
	// the session and redirecting to the login view.
	ErrUnauthenticated = errors.New("authentication rejected by upstream")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("resource not found")
)

// User is the cached, non-sensitive profile stored next to the bearer
// credential. It is the only upstream payload the session core inspects.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role_id"`
}

// IsStaff reports whether the user may enter the back-office panel at all.
func (u *User) IsStaff() bool {
	switch u.Role.Normalize() {
	case RoleAdmin, RoleTechnician, RoleReceptionist:
		return true
	}
	return false
}

// SessionState is the derived authentication view handed to guards and
// handlers. It is recomputed from the stored pair, never persisted.
type SessionState struct {
	IsAuthenticated bool
	User            *User
}

// RoleID returns the normalized role of the session's user, or RoleCustomer
// when no user is present. Guards never see a raw upstream role value.
func (s SessionState) RoleID() Role {
	if s.User == nil {
		return RoleCustomer
	}
	return s.User.Role.Normalize()
}
