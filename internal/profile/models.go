// Package profile holds the per-identity profile record and the role
// taxonomy. A Profile exists only when a login exists: its ID always equals
// the credential-store identity ID it belongs to. Students never get one;
// their guardians do.
package profile

import (
	"time"

	id "scolara/pkg/domain"
)

// Role enumerates the fixed set of roles a profile can carry.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleTeacher    Role = "teacher"
	RoleOperator   Role = "operator"
	RoleStudent    Role = "student"
	RoleParent     Role = "parent"
)

// AllRoles lists every valid role, used for input validation.
var AllRoles = []Role{
	RoleSuperAdmin, RoleAdmin, RoleAccountant,
	RoleTeacher, RoleOperator, RoleStudent, RoleParent,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Profile is the application-facing record of an authentication identity.
type Profile struct {
	ID          id.UserID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        Role       `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Active      bool       `json:"active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
