package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Role is the canonical numeric role identifier used everywhere in the
// gateway. The upstream API has historically serialized roles as a number,
// a numeric string, or a legacy role-code string; UnmarshalJSON accepts all
// of them so guards only ever compare canonical values.
type Role int

const (
	RoleAdmin        Role = 1
	RoleTechnician   Role = 2
	RoleReceptionist Role = 3
	// RoleCustomer is the catch-all for every role id that is not one of
	// the staff roles above.
	RoleCustomer Role = 4
)

// roleCodes maps legacy role-code strings (both the Spanish codes emitted by
// older upstream builds and their English equivalents) to canonical roles.
var roleCodes = map[string]Role{
	"admin":         RoleAdmin,
	"administrador": RoleAdmin,
	"tecnico":       RoleTechnician,
	"technician":    RoleTechnician,
	"recepcionista": RoleReceptionist,
	"receptionist":  RoleReceptionist,
	"cliente":       RoleCustomer,
	"customer":      RoleCustomer,
	"client":        RoleCustomer,
}

// Normalize maps an arbitrary numeric role id to its canonical value.
// Unknown ids collapse to RoleCustomer.
func (r Role) Normalize() Role {
	switch r {
	case RoleAdmin, RoleTechnician, RoleReceptionist:
		return r
	default:
		return RoleCustomer
	}
}

func (r Role) String() string {
	switch r.Normalize() {
	case RoleAdmin:
		return "admin"
	case RoleTechnician:
		return "technician"
	case RoleReceptionist:
		return "receptionist"
	default:
		return "customer"
	}
}

// ParseRole normalizes a role serialized as a number, a numeric string, or a
// role-code string. Unrecognized values map to RoleCustomer.
func ParseRole(v any) Role {
	switch t := v.(type) {
	case Role:
		return t.Normalize()
	case int:
		return Role(t).Normalize()
	case int64:
		return Role(t).Normalize()
	case float64:
		return Role(int(t)).Normalize()
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if n, err := strconv.Atoi(s); err == nil {
			return Role(n).Normalize()
		}
		if r, ok := roleCodes[s]; ok {
			return r
		}
	}
	return RoleCustomer
}

// UnmarshalJSON tolerates the role representations observed in the wild:
// 1, "1", "admin", and the nested {"id": …, "code": …} object.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if obj, ok := raw.(map[string]any); ok {
		if id, ok := obj["id"]; ok {
			*r = ParseRole(id)
			return nil
		}
		if code, ok := obj["code"]; ok {
			*r = ParseRole(code)
			return nil
		}
		*r = RoleCustomer
		return nil
	}
	*r = ParseRole(raw)
	return nil
}
