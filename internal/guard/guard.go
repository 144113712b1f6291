// Package guard decides, per navigation, whether a session may reach a
// protected destination. Decide is pure; the Echo adaptation lives in
// internal/api/middleware.
package guard

import "github.com/techfix/panel-gateway/internal/core/domain"

// Decision is the outcome of evaluating a session against a route's
// requirement.
type Decision int

const (
	Allow Decision = iota
	// RedirectToLogin: the requester is not authenticated at all.
	RedirectToLogin
	// RedirectToUnauthorized: the requester is known but not entitled.
	RedirectToUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToUnauthorized:
		return "redirect_to_unauthorized"
	default:
		return "unknown"
	}
}

// Requirement declares what a route demands of its visitors.
type Requirement struct {
	authenticated bool
	roles         []domain.Role
}

// Public places no demand. Guards are not normally invoked for fully public
// routes, but evaluating one is safe and always allows.
func Public() Requirement { return Requirement{} }

// Authenticated admits any logged-in user regardless of role.
func Authenticated() Requirement { return Requirement{authenticated: true} }

// Roles admits only logged-in users whose normalized role is in the set.
func Roles(roles ...domain.Role) Requirement {
	normalized := make([]domain.Role, len(roles))
	for i, r := range roles {
		normalized[i] = r.Normalize()
	}
	return Requirement{authenticated: true, roles: normalized}
}

// Decide evaluates state against req. Role comparison happens on normalized
// values only, so a role the upstream serialized as "1" and one serialized
// as 1 decide identically.
func Decide(state domain.SessionState, req Requirement) Decision {
	if !req.authenticated {
		return Allow
	}
	if !state.IsAuthenticated {
		return RedirectToLogin
	}
	if len(req.roles) == 0 {
		return Allow
	}

	role := state.RoleID()
	for _, allowed := range req.roles {
		if role == allowed {
			return Allow
		}
	}
	return RedirectToUnauthorized
}
