package operator

import (
	"strings"
)

// Role is the permission code carried in operator tokens.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) IsValid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CanManageOrders reports whether the role may read and mutate orders.
func (r Role) CanManageOrders() bool {
	return r.IsValid()
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

type Operator struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
}
