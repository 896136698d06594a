package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwitchRole(t *testing.T) {
	user := &User{
		Role:           RoleBuyer,
		CurrentRole:    RoleBuyer,
		AvailableRoles: []Role{RoleBuyer, RoleFarmer},
	}

	assert.NoError(t, user.SwitchRole(RoleFarmer))
	assert.Equal(t, RoleFarmer, user.CurrentRole)
	// The legacy role field follows the active one.
	assert.Equal(t, RoleFarmer, user.Role)

	assert.ErrorIs(t, user.SwitchRole(RoleAdmin), ErrRoleNotPermitted)
}

func TestActiveRole_FallsBackToLegacyField(t *testing.T) {
	user := &User{Role: RoleFarmer}
	assert.Equal(t, RoleFarmer, user.ActiveRole())

	user.CurrentRole = RoleBuyer
	assert.Equal(t, RoleBuyer, user.ActiveRole())
}
