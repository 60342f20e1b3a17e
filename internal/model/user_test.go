package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	tests := []struct {
		name string
		role Role
		min  Role
		want bool
	}{
		{"user meets user", RoleUser, RoleUser, true},
		{"user below admin", RoleUser, RoleAdmin, false},
		{"user below superuser", RoleUser, RoleSuperuser, false},
		{"admin meets user", RoleAdmin, RoleUser, true},
		{"admin meets admin", RoleAdmin, RoleAdmin, true},
		{"admin below superuser", RoleAdmin, RoleSuperuser, false},
		{"superuser meets everything", RoleSuperuser, RoleSuperuser, true},
		{"superuser meets admin", RoleSuperuser, RoleAdmin, true},
		{"unknown role meets nothing", Role("owner"), RoleUser, false},
		{"empty role meets nothing", Role(""), RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.min))
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleSuperuser.Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())
}
