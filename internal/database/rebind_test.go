package database

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite untouched", SQLite, "SELECT 1 FROM admins WHERE email = ?", "SELECT 1 FROM admins WHERE email = ?"},
		{"postgres single", Postgres, "SELECT 1 FROM admins WHERE email = ?", "SELECT 1 FROM admins WHERE email = $1"},
		{"postgres many", Postgres, "UPDATE admins SET email = ? WHERE admin_id = ?", "UPDATE admins SET email = $1 WHERE admin_id = $2"},
		{"postgres none", Postgres, "SELECT COUNT(*) FROM admins", "SELECT COUNT(*) FROM admins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rebind(tt.dialect, tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStudentIdentityArgs(t *testing.T) {
	args := studentTable.identityArgs("R-1")
	if len(args) != 3 {
		t.Fatalf("identityArgs() returned %d args, want 3", len(args))
	}
	for i, a := range args {
		if a != "R-1" {
			t.Errorf("identityArgs()[%d] = %v, want R-1", i, a)
		}
	}
}
