package model

import "strings"

// Role is the closed staff role enum. Precedence: admin > operator >
// viewer.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleOperator:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}

// AtLeast reports whether r grants the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

// RoleFromClaims maps heterogeneous token claim shapes to the role
// enum. An explicit "role" claim wins; otherwise "groups" is consulted,
// which upstream identity providers deliver either as an array or as a
// comma-separated string. Unknown shapes degrade to viewer.
func RoleFromClaims(claims map[string]any) Role {
	switch claims["role"] {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleOperator):
		return RoleOperator
	case string(RoleViewer):
		return RoleViewer
	}

	var groups []string
	switch raw := claims["groups"].(type) {
	case []any:
		for _, g := range raw {
			if s, ok := g.(string); ok {
				groups = append(groups, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, g := range raw {
			groups = append(groups, strings.TrimSpace(g))
		}
	case string:
		for _, g := range strings.Split(raw, ",") {
			groups = append(groups, strings.TrimSpace(g))
		}
	}

	set := make(map[string]bool, len(groups))
	for _, g := range groups {
		set[g] = true
	}
	switch {
	case set[string(RoleAdmin)]:
		return RoleAdmin
	case set[string(RoleOperator)]:
		return RoleOperator
	default:
		return RoleViewer
	}
}

// Staff is an already-verified staff principal handed over by the
// authentication gateway.
type Staff struct {
	StaffID string `json:"staff_id"`
	Role    Role   `json:"role"`
}
