package domain

// Role is a named bundle of authorities assigned to a user. Authorities are
// fixed per role; there is no per-user grant table.
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleHR         Role = "ROLE_HR"
	RoleManager    Role = "ROLE_MANAGER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

var roleAuthorities = map[Role][]string{
	RoleUser:       {"user:read"},
	RoleHR:         {"user:read", "user:update"},
	RoleManager:    {"user:read", "user:update"},
	RoleAdmin:      {"user:read", "user:create", "user:update"},
	RoleSuperAdmin: {"user:read", "user:create", "user:update", "user:delete"},
}

// Authorities returns the permission strings granted by the role. Unknown
// roles grant nothing.
func (r Role) Authorities() []string {
	return roleAuthorities[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleAuthorities[r]
	return ok
}

// ParseRole resolves a role name, defaulting to RoleUser for empty input.
func ParseRole(name string) (Role, bool) {
	if name == "" {
		return RoleUser, true
	}
	r := Role(name)
	return r, r.Valid()
}
