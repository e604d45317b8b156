package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/menuforge/internal/shared"
)

func principalWithRole(role Role) *shared.Principal {
	return &shared.Principal{
		IdentityID: uuid.New(),
		ProfileID:  uuid.New(),
		Role:       string(role),
		Email:      "actor@example.com",
	}
}

func TestAuthorizeDecisions(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	user := principalWithRole(RoleUser)

	assert.Equal(t, Allow, gate.Authorize(user, ActionCreate, ResourceBusiness))
	assert.Equal(t, AllowIfOwner, gate.Authorize(user, ActionDelete, ResourceBusiness))
	assert.Equal(t, Deny, gate.Authorize(user, ActionUpdate, ResourceUser))
	assert.Equal(t, Deny, gate.Authorize(nil, ActionRead, ResourceBusiness))
}

func TestAuthorizeAdminManageCoversReadUpdateDelete(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	admin := principalWithRole(RoleAdmin)

	for _, a := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		assert.Equal(t, Allow, gate.Authorize(admin, a, ResourceBusiness))
	}
}

func TestAuthorizeAlternateMatrix(t *testing.T) {
	// The gate accepts injected matrices so deployments can tighten grants.
	matrix := Matrix{
		RoleUser: {
			ResourceItem: {Own(ActionRead)},
		},
	}
	gate := NewGate(matrix, nil)
	user := principalWithRole(RoleUser)

	assert.Equal(t, AllowIfOwner, gate.Authorize(user, ActionRead, ResourceItem))
	assert.Equal(t, Deny, gate.Authorize(user, ActionCreate, ResourceItem))
}

func TestAuthorizeOwnedMasksNonOwnershipAsNotFound(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	user := principalWithRole(RoleUser)
	notOwner := func(ctx context.Context) (bool, error) { return false, nil }

	err := gate.AuthorizeOwned(context.Background(), user, ActionDelete, ResourceBusiness, notOwner)
	// A non-owner deleting someone else's business sees exactly what they
	// would see for a business that does not exist.
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthorizeOwnedSkipsCheckOnUnconditionalGrant(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	admin := principalWithRole(RoleAdmin)
	called := false
	check := func(ctx context.Context) (bool, error) {
		called = true
		return false, nil
	}

	require.NoError(t, gate.AuthorizeOwned(context.Background(), admin, ActionDelete, ResourceBusiness, check))
	assert.False(t, called)
}

func TestAuthorizeOwnedOwnerPasses(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	user := principalWithRole(RoleUser)
	owner := func(ctx context.Context) (bool, error) { return true, nil }

	require.NoError(t, gate.AuthorizeOwned(context.Background(), user, ActionUpdate, ResourceBusiness, owner))
}

func TestAuthorizeOwnedDenyWithoutGrant(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	user := principalWithRole(RoleUser)
	check := func(ctx context.Context) (bool, error) { return true, nil }

	err := gate.AuthorizeOwned(context.Background(), user, ActionManage, ResourceUser, check)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestAuthorizeOwnedPropagatesCheckError(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)
	user := principalWithRole(RoleUser)
	boom := errors.New("db down")
	check := func(ctx context.Context) (bool, error) { return false, boom }

	err := gate.AuthorizeOwned(context.Background(), user, ActionUpdate, ResourceBusiness, check)
	assert.ErrorIs(t, err, boom)
}

type captureRecorder struct {
	decisions []string
}

func (c *captureRecorder) RecordDecision(d string) { c.decisions = append(c.decisions, d) }

func TestAuthorizeRecordsDecisions(t *testing.T) {
	rec := &captureRecorder{}
	gate := NewGate(DefaultMatrix(), rec)

	gate.Authorize(principalWithRole(RoleAdmin), ActionRead, ResourceBusiness)
	gate.Authorize(principalWithRole(RoleUser), ActionDelete, ResourceBusiness)
	gate.Authorize(nil, ActionRead, ResourceBusiness)

	assert.Equal(t, []string{"allow", "allow_if_owner", "deny"}, rec.decisions)
}

func TestRequireRole(t *testing.T) {
	gate := NewGate(DefaultMatrix(), nil)

	require.NoError(t, gate.RequireRole(principalWithRole(RoleAdmin), RoleAdmin, RoleSuperAdmin))
	assert.ErrorIs(t, gate.RequireRole(principalWithRole(RoleUser), RoleAdmin, RoleSuperAdmin), shared.ErrPermissionDenied)
	assert.ErrorIs(t, gate.RequireRole(nil, RoleAdmin), shared.ErrPermissionDenied)
}
