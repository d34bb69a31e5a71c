package models

// Role is the sole authorization attribute of a user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the accepted roles. An empty role counts as student.
func (r Role) Valid() bool {
	switch r {
	case "", RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Effective maps an absent role to student.
func (r Role) Effective() Role {
	if r == "" {
		return RoleStudent
	}
	return r
}
