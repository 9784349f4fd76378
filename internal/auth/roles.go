package auth

// Role is a workspace role carried on a user's profile.
type Role string

const (
	RolePM        Role = "pm"
	RoleDeveloper Role = "developer"
	RoleTester    Role = "tester"
	RoleAnalyst   Role = "analyst"
)

// DefaultRole is assigned at sign-up when no role is requested.
const DefaultRole = RoleDeveloper

// ValidRoles lists the closed role enumeration.
var ValidRoles = []Role{RolePM, RoleDeveloper, RoleTester, RoleAnalyst}

// IsValidRole reports whether r is an assignable role.
func IsValidRole(r Role) bool {
	switch r {
	case RolePM, RoleDeveloper, RoleTester, RoleAnalyst:
		return true
	}
	return false
}

// Capabilities a role may need beyond plain authenticated access. Anything
// not listed here is open to every signed-in user.
const (
	CapViewLoginLogs = "login-logs.view"
	CapCreateTask    = "task.create"
	CapEditStats     = "stats.edit"
)

// permissions maps each restricted capability to the roles allowed to use
// it. Authorization checks consult this table only; no handler hardcodes a
// role list.
var permissions = map[string][]Role{
	CapViewLoginLogs: {RolePM},
	CapCreateTask:    {RolePM, RoleDeveloper},
	CapEditStats:     {RolePM},
}

// Allowed reports whether role may use the named capability. Unknown
// capabilities are unrestricted.
func Allowed(role Role, capability string) bool {
	roles, restricted := permissions[capability]
	if !restricted {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
