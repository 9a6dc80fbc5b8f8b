package domain

// RoleName is the closed set of role names the system understands.
// Roles are seeded once; their names never change afterwards.
type RoleName string

const (
	RoleAdmin RoleName = "admin"
	RoleUser  RoleName = "user"
)

// Role is the domain representation of a role record.
type Role struct {
	ID   RoleID
	Name RoleName
}

// IsAdmin reports whether the role grants administrative privilege.
func (r Role) IsAdmin() bool { return r.Name == RoleAdmin }
