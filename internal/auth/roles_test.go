package auth

import "testing"

func TestAllowed(t *testing.T) {
	tests := []struct {
		role       Role
		capability string
		want       bool
	}{
		{RolePM, CapViewLoginLogs, true},
		{RoleDeveloper, CapViewLoginLogs, false},
		{RoleTester, CapViewLoginLogs, false},
		{RoleAnalyst, CapViewLoginLogs, false},

		{RolePM, CapCreateTask, true},
		{RoleDeveloper, CapCreateTask, true},
		{RoleTester, CapCreateTask, false},
		{RoleAnalyst, CapCreateTask, false},

		{RolePM, CapEditStats, true},
		{RoleDeveloper, CapEditStats, false},

		// Unknown capabilities are open to everyone.
		{RoleTester, "task.view", true},
		{RoleAnalyst, "", true},
	}

	for _, tt := range tests {
		if got := Allowed(tt.role, tt.capability); got != tt.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.capability, got, tt.want)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false", r)
		}
	}
	for _, r := range []Role{"", "admin", "PM"} {
		if IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = true", r)
		}
	}
}
