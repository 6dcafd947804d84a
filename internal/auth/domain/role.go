package domain

import "fmt"

// Role of a platform account.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleProfessor, RoleCompany, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// SelfRegistrable reports whether an account with this role may sign itself
// up. Professors and admins are provisioned by an administrator.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleCompany
}

func (r Role) String() string { return string(r) }
