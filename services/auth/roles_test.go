package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherCanReassign(t *testing.T) {
	assert.True(t, HasPermission(RoleDispatcher, PermReassignBookings))
	assert.False(t, HasPermission(RoleProvider, PermReassignBookings))
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	assert.Empty(t, PermissionsFor(Role("intern")))
	assert.False(t, HasPermission(Role(""), PermViewBookings))
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	perms := PermissionsFor(RoleOwner)
	perms[0] = Permission("tampered")
	assert.Equal(t, PermViewBookings, PermissionsFor(RoleOwner)[0])
}
