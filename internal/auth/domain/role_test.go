package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Role
		wantErr bool
	}{
		{"student", domain.RoleStudent, false},
		{" Teacher ", domain.RoleTeacher, false},
		{"ADMIN", domain.RoleAdmin, false},
		{"faculty", domain.RoleFaculty, false},
		{"", "", true},
		{"superuser", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseRole(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSelfAssignable(t *testing.T) {
	require.True(t, domain.RoleStudent.SelfAssignable())
	require.True(t, domain.RoleTeacher.SelfAssignable())
	require.True(t, domain.RoleFaculty.SelfAssignable())
	require.False(t, domain.RoleAdmin.SelfAssignable())
	require.False(t, domain.Role("root").SelfAssignable())
}

func TestAllRolesIsACopy(t *testing.T) {
	roles := domain.AllRoles()
	require.Len(t, roles, 4)
	roles[0] = "mutated"
	require.Equal(t, domain.RoleStudent, domain.AllRoles()[0])
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "alice@example.edu", domain.NormalizeEmail("  Alice@Example.EDU "))
}
