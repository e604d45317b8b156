package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermissionAbsentEntryDenies(t *testing.T) {
	m := DefaultMatrix()

	assert.False(t, m.HasPermission(RoleUser, ActionRead, ResourceAdminDashboard, false))
	assert.False(t, m.HasPermission(RoleUser, ActionManage, ResourceUser, true))
	assert.False(t, m.HasPermission(Role("ghost"), ActionRead, ResourceBusiness, false))
	assert.False(t, m.HasPermission(RoleUser, ActionRead, Resource("unknown"), true))
}

func TestHasPermissionManageImpliesEveryAction(t *testing.T) {
	m := DefaultMatrix()
	actions := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}

	for _, role := range []Role{RoleAdmin, RoleSuperAdmin} {
		for _, a := range actions {
			assert.True(t, m.HasPermission(role, a, ResourceBusiness, false), "%s should allow %s via manage", role, a)
		}
	}
}

func TestHasPermissionOwnScope(t *testing.T) {
	m := DefaultMatrix()

	// Ownership grants apply only when isOwn is true.
	assert.False(t, m.HasPermission(RoleUser, ActionUpdate, ResourceBusiness, false))
	assert.True(t, m.HasPermission(RoleUser, ActionUpdate, ResourceBusiness, true))

	// isOwn never grants anything that has no matching own-scoped entry.
	assert.False(t, m.HasPermission(RoleUser, ActionCreate, ResourceProfile, true))
	assert.False(t, m.HasPermission(RoleUser, ActionManage, ResourceBusiness, true))
}

func TestHasPermissionOwnNeverWidensUnownedGrants(t *testing.T) {
	m := DefaultMatrix()
	roles := []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
	resources := []Resource{ResourceBusiness, ResourceCategory, ResourceItem, ResourceProfile, ResourceUser, ResourceAdminDashboard}
	actions := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}

	for _, r := range roles {
		for _, res := range resources {
			for _, a := range actions {
				if m.HasPermission(r, a, res, false) {
					assert.True(t, m.HasPermission(r, a, res, true),
						"unowned grant for (%s,%s,%s) must also hold when isOwn", r, a, res)
				}
			}
		}
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleSuperAdmin.Valid())
	assert.False(t, Role("root").Valid())
}

func TestRoleElevated(t *testing.T) {
	assert.False(t, RoleUser.Elevated())
	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleSuperAdmin.Elevated())
	assert.False(t, Role("").Elevated())
}
