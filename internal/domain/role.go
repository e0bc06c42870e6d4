package domain

// Role is the caller's position in the library hierarchy:
// super_admin > admin > librarian > user.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleLibrarian  Role = "librarian"
	RoleUser       Role = "user"
)

// ParseRole returns the Role named by s. Unknown names report false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSuperAdmin, RoleAdmin, RoleLibrarian, RoleUser:
		return r, true
	}
	return "", false
}
