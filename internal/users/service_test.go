package users

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/menuforge/internal/cascade"
	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/shared"
)

type mockDirectory struct {
	byID        map[uuid.UUID]*profiles.Profile
	roleChanges map[uuid.UUID]string
}

func (m *mockDirectory) FindByID(_ context.Context, id uuid.UUID) (*profiles.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockDirectory) List(_ context.Context, _, _ int) ([]profiles.Profile, error) {
	out := make([]profiles.Profile, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockDirectory) Count(_ context.Context) (int, error) {
	return len(m.byID), nil
}

func (m *mockDirectory) UpdateRole(_ context.Context, id uuid.UUID, role string) (*profiles.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if m.roleChanges == nil {
		m.roleChanges = map[uuid.UUID]string{}
	}
	m.roleChanges[id] = role
	p.Role = role
	return p, nil
}

type mockPurger struct {
	purged []uuid.UUID
	err    error
}

func (m *mockPurger) PurgeAccount(_ context.Context, id uuid.UUID) (*cascade.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.purged = append(m.purged, id)
	return &cascade.Report{ProfileID: id, BusinessesPurged: 1}, nil
}

type mockEnqueuer struct {
	enqueued []uuid.UUID
}

func (m *mockEnqueuer) EnqueueAccountPurge(_ context.Context, id uuid.UUID) error {
	m.enqueued = append(m.enqueued, id)
	return nil
}

type mockStats struct {
	calls int
}

func (m *mockStats) CollectStats(_ context.Context) (*Stats, error) {
	m.calls++
	return &Stats{TotalUsers: 7, UsersByRole: map[string]int64{"user": 6, "admin": 1}}, nil
}

func strPtr(s string) *string { return &s }

func adminPrincipal() (*shared.Principal, *profiles.Profile) {
	return tierPrincipal("admin")
}

func superAdminPrincipal() (*shared.Principal, *profiles.Profile) {
	return tierPrincipal("super_admin")
}

func tierPrincipal(role string) (*shared.Principal, *profiles.Profile) {
	identityID := uuid.New()
	profileID := uuid.New()
	principal := &shared.Principal{IdentityID: identityID, ProfileID: profileID, Role: role}
	profile := &profiles.Profile{ID: profileID, IdentityID: strPtr(identityID.String()), Email: role + "@example.com", Role: role}
	return principal, profile
}

func newService(dir *mockDirectory, purger *mockPurger, enqueuer PurgeEnqueuer) *Service {
	return NewService(slog.Default(), dir, &mockStats{}, purger, enqueuer, nil, nil)
}

func TestChangeRole(t *testing.T) {
	actor, actorProfile := superAdminPrincipal()
	targetID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		targetID:        {ID: targetID, Email: "user@example.com", Role: "user"},
	}}
	svc := newService(dir, &mockPurger{}, nil)

	updated, err := svc.ChangeRole(context.Background(), actor, targetID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, "admin", dir.roleChanges[targetID])
}

func TestChangeRoleElevationRequiresSuperAdmin(t *testing.T) {
	// An admin may not grant an administrative tier to anyone.
	actor, actorProfile := adminPrincipal()
	targetID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		targetID:        {ID: targetID, Email: "user@example.com", Role: "user"},
	}}
	svc := newService(dir, &mockPurger{}, nil)

	for _, role := range []string{"admin", "super_admin"} {
		_, err := svc.ChangeRole(context.Background(), actor, targetID, role)
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	}
	assert.Empty(t, dir.roleChanges)
}

func TestChangeRolePeerAdminRefused(t *testing.T) {
	// Demoting a fellow admin takes super_admin.
	actor, actorProfile := adminPrincipal()
	peerID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		peerID:          {ID: peerID, Email: "peer@example.com", Role: "admin"},
	}}
	svc := newService(dir, &mockPurger{}, nil)

	_, err := svc.ChangeRole(context.Background(), actor, peerID, "user")
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	assert.Empty(t, dir.roleChanges)
}

func TestSuperAdminManagesAdmins(t *testing.T) {
	actor, actorProfile := superAdminPrincipal()
	peerID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		peerID:          {ID: peerID, Email: "peer@example.com", Role: "admin"},
	}}
	purger := &mockPurger{}
	svc := newService(dir, purger, nil)

	updated, err := svc.ChangeRole(context.Background(), actor, peerID, "user")
	require.NoError(t, err)
	assert.Equal(t, "user", updated.Role)

	_, err = svc.Delete(context.Background(), actor, peerID, false)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{peerID}, purger.purged)
}

func TestChangeRoleRejectsUnknownTier(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{actorProfile.ID: actorProfile}}
	svc := newService(dir, &mockPurger{}, nil)

	_, err := svc.ChangeRole(context.Background(), actor, uuid.New(), "owner")
	assert.ErrorIs(t, err, shared.ErrInvalidRole)
}

func TestChangeRoleOwnAccountRefused(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{actorProfile.ID: actorProfile}}
	svc := newService(dir, &mockPurger{}, nil)

	_, err := svc.ChangeRole(context.Background(), actor, actorProfile.ID, "user")
	assert.ErrorIs(t, err, shared.ErrOwnAccount)
	assert.Empty(t, dir.roleChanges)
}

func TestChangeRoleOwnIdentityRefused(t *testing.T) {
	// A second profile row linked to the operator's identity is still the
	// operator.
	actor, actorProfile := adminPrincipal()
	twinID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		twinID:          {ID: twinID, IdentityID: actorProfile.IdentityID, Email: "admin@example.com", Role: "admin"},
	}}
	svc := newService(dir, &mockPurger{}, nil)

	_, err := svc.ChangeRole(context.Background(), actor, twinID, "user")
	assert.ErrorIs(t, err, shared.ErrOwnAccount)
}

func TestDeleteRunsCascade(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	targetID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		targetID:        {ID: targetID, Email: "user@example.com", Role: "user"},
	}}
	purger := &mockPurger{}
	svc := newService(dir, purger, nil)

	report, err := svc.Delete(context.Background(), actor, targetID, false)
	require.NoError(t, err)
	assert.Equal(t, targetID, report.ProfileID)
	assert.Equal(t, []uuid.UUID{targetID}, purger.purged)
}

func TestDeleteOwnAccountRefused(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{actorProfile.ID: actorProfile}}
	purger := &mockPurger{}
	svc := newService(dir, purger, nil)

	_, err := svc.Delete(context.Background(), actor, actorProfile.ID, false)
	assert.ErrorIs(t, err, shared.ErrOwnAccount)
	assert.Empty(t, purger.purged)
}

func TestDeletePeerAdminRefused(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	peerID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		peerID:          {ID: peerID, Email: "peer@example.com", Role: "admin"},
	}}
	purger := &mockPurger{}
	svc := newService(dir, purger, nil)

	_, err := svc.Delete(context.Background(), actor, peerID, false)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	assert.Empty(t, purger.purged)
}

func TestDeleteUnknownTarget(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{actorProfile.ID: actorProfile}}
	svc := newService(dir, &mockPurger{}, nil)

	_, err := svc.Delete(context.Background(), actor, uuid.New(), false)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteAsyncEnqueues(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	targetID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		targetID:        {ID: targetID, Email: "user@example.com", Role: "user"},
	}}
	purger := &mockPurger{}
	enqueuer := &mockEnqueuer{}
	svc := newService(dir, purger, enqueuer)

	report, err := svc.Delete(context.Background(), actor, targetID, true)
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Equal(t, []uuid.UUID{targetID}, enqueuer.enqueued)
	assert.Empty(t, purger.purged)
}

func TestDeleteCascadeErrorPropagates(t *testing.T) {
	actor, actorProfile := adminPrincipal()
	targetID := uuid.New()
	dir := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{
		actorProfile.ID: actorProfile,
		targetID:        {ID: targetID, Email: "user@example.com", Role: "user"},
	}}
	purger := &mockPurger{err: errors.New("purge businesses: deadlock")}
	svc := newService(dir, purger, nil)

	_, err := svc.Delete(context.Background(), actor, targetID, false)
	assert.ErrorContains(t, err, "deadlock")
}

func TestStatsSingleflight(t *testing.T) {
	actorless := &mockDirectory{byID: map[uuid.UUID]*profiles.Profile{}}
	stats := &mockStats{}
	svc := NewService(slog.Default(), actorless, stats, &mockPurger{}, nil, nil, nil)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.TotalUsers)
	assert.Equal(t, 1, stats.calls)
}
