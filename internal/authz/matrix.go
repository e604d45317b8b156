// Package authz implements the static role/ownership permission model that
// gates every API operation.
package authz

// Role is the permission tier assigned to a profile. A principal holds
// exactly one role at a time.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Elevated reports whether the role sits in an administrative tier.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Resource names a protected entity class.
type Resource string

const (
	ResourceBusiness       Resource = "business"
	ResourceCategory       Resource = "category"
	ResourceItem           Resource = "item"
	ResourceProfile        Resource = "profile"
	ResourceUser           Resource = "user"
	ResourceAdminDashboard Resource = "admin_dashboard"
)

// Action is a verb performed on a resource. ActionManage implies every
// other action on the same resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// Permission grants an action, optionally restricted to records the acting
// principal owns.
type Permission struct {
	Action  Action
	OwnOnly bool
}

// Own marks a permission as ownership-scoped.
func Own(a Action) Permission { return Permission{Action: a, OwnOnly: true} }

// Any grants a permission regardless of ownership.
func Any(a Action) Permission { return Permission{Action: a} }

// Matrix maps (role, resource) to the set of granted permissions. A missing
// entry is a denial, never an error. The matrix is built once at startup and
// treated as immutable; it is passed into the Gate by injection so tests can
// substitute alternate tables.
type Matrix map[Role]map[Resource][]Permission

// DefaultMatrix returns the production permission table.
func DefaultMatrix() Matrix {
	return Matrix{
		RoleUser: {
			ResourceBusiness: {Any(ActionCreate), Any(ActionRead), Own(ActionUpdate), Own(ActionDelete)},
			// Creating a category or item mutates its parent, so the
			// create grant is ownership-scoped to the parent chain.
			ResourceCategory: {Own(ActionCreate), Any(ActionRead), Own(ActionUpdate), Own(ActionDelete)},
			ResourceItem:     {Own(ActionCreate), Any(ActionRead), Own(ActionUpdate), Own(ActionDelete)},
			ResourceProfile:  {Own(ActionRead), Own(ActionUpdate), Own(ActionDelete)},
		},
		RoleAdmin: {
			ResourceBusiness:       {Any(ActionManage)},
			ResourceCategory:       {Any(ActionManage)},
			ResourceItem:           {Any(ActionManage)},
			ResourceProfile:        {Any(ActionManage)},
			ResourceUser:           {Any(ActionManage)},
			ResourceAdminDashboard: {Any(ActionRead)},
		},
		RoleSuperAdmin: {
			ResourceBusiness:       {Any(ActionManage)},
			ResourceCategory:       {Any(ActionManage)},
			ResourceItem:           {Any(ActionManage)},
			ResourceProfile:        {Any(ActionManage)},
			ResourceUser:           {Any(ActionManage)},
			ResourceAdminDashboard: {Any(ActionManage)},
		},
	}
}

// HasPermission reports whether role may perform action on resource.
// Ownership-scoped grants apply only when isOwn is true; ActionManage
// grants imply every action on the resource. Absent entries deny.
func (m Matrix) HasPermission(role Role, action Action, resource Resource, isOwn bool) bool {
	perms, ok := m[role][resource]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p.Action != action && p.Action != ActionManage {
			continue
		}
		if !p.OwnOnly || isOwn {
			return true
		}
	}
	return false
}
