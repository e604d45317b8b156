package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/shared"
)

type stubVerifier struct {
	claims *Claims
	err    error
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type mockProfileStore struct {
	byIdentity map[string]*profiles.Profile
	unlinked   map[string]*profiles.Profile // keyed by email

	upsertErr   error
	upsertCalls int
	linkCalls   int
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{
		byIdentity: make(map[string]*profiles.Profile),
		unlinked:   make(map[string]*profiles.Profile),
	}
}

func (m *mockProfileStore) FindByIdentityID(ctx context.Context, identityID string) (*profiles.Profile, error) {
	if p, ok := m.byIdentity[identityID]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockProfileStore) LinkIdentity(ctx context.Context, email, identityID string) (*profiles.Profile, error) {
	m.linkCalls++
	p, ok := m.unlinked[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	delete(m.unlinked, email)
	id := identityID
	p.IdentityID = &id
	m.byIdentity[identityID] = p
	return p, nil
}

func (m *mockProfileStore) UpsertByIdentity(ctx context.Context, params profiles.UpsertParams) (*profiles.Profile, error) {
	m.upsertCalls++
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	if p, ok := m.byIdentity[params.IdentityID]; ok {
		p.Email = params.Email
		return p, nil
	}
	id := params.IdentityID
	p := &profiles.Profile{
		ID:          uuid.New(),
		IdentityID:  &id,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		AvatarURL:   params.AvatarURL,
		Role:        "user",
	}
	m.byIdentity[params.IdentityID] = p
	return p, nil
}

func TestResolveMissingCredential(t *testing.T) {
	r := NewResolver(&stubVerifier{}, newMockProfileStore(), nil)

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrMissingCredential)

	_, err = r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, shared.ErrMissingCredential)
}

func TestResolveInvalidCredential(t *testing.T) {
	r := NewResolver(&stubVerifier{err: shared.ErrInvalidCredential}, newMockProfileStore(), nil)

	_, err := r.Resolve(context.Background(), "bad-token")
	assert.ErrorIs(t, err, shared.ErrInvalidCredential)
}

func TestResolveRejectsNonUUIDSubject(t *testing.T) {
	verifier := &stubVerifier{claims: &Claims{Subject: "not-a-uuid", Email: "x@example.com"}}
	r := NewResolver(verifier, newMockProfileStore(), nil)

	_, err := r.Resolve(context.Background(), "token")
	assert.ErrorIs(t, err, shared.ErrInvalidCredential)
}

func TestResolveAutoProvisionsProfile(t *testing.T) {
	identityID := uuid.NewString()
	verifier := &stubVerifier{claims: &Claims{
		Subject: identityID,
		Email:   "ada@example.com",
		Metadata: map[string]any{
			"name":       "Ada Lovelace",
			"avatar_url": "https://cdn.example.com/ada.png",
		},
	}}
	store := newMockProfileStore()
	r := NewResolver(verifier, store, nil)

	p, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, identityID, p.IdentityID.String())
	assert.Equal(t, "user", p.Role)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
	assert.Equal(t, "https://cdn.example.com/ada.png", p.AvatarURL)
	assert.Equal(t, 1, store.upsertCalls)
}

func TestResolveMetadataKeyOrder(t *testing.T) {
	identityID := uuid.NewString()
	verifier := &stubVerifier{claims: &Claims{
		Subject: identityID,
		Email:   "bob@example.com",
		Metadata: map[string]any{
			"user_name": "bobby",
			"full_name": "Bob Tables",
			"picture":   "https://cdn.example.com/bob.jpg",
		},
	}}
	r := NewResolver(verifier, newMockProfileStore(), nil)

	p, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)

	// full_name outranks user_name; picture is the avatar fallback key.
	assert.Equal(t, "Bob Tables", p.DisplayName)
	assert.Equal(t, "https://cdn.example.com/bob.jpg", p.AvatarURL)
}

func TestResolveDisplayNameFallsBackToEmail(t *testing.T) {
	verifier := &stubVerifier{claims: &Claims{
		Subject: uuid.NewString(),
		Email:   "jane.doe@example.com",
	}}
	r := NewResolver(verifier, newMockProfileStore(), nil)

	p, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.DisplayName)
}

func TestResolveIdempotentSameProfile(t *testing.T) {
	verifier := &stubVerifier{claims: &Claims{
		Subject: uuid.NewString(),
		Email:   "repeat@example.com",
	}}
	store := newMockProfileStore()
	r := NewResolver(verifier, store, nil)

	first, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, first.ProfileID, second.ProfileID)
}

func TestResolveAdoptsLegacyProfileOnce(t *testing.T) {
	identityID := uuid.NewString()
	legacy := &profiles.Profile{
		ID:          uuid.New(),
		Email:       "legacy@example.com",
		DisplayName: "Legacy User",
		Role:        "user",
	}
	store := newMockProfileStore()
	store.unlinked["legacy@example.com"] = legacy

	verifier := &stubVerifier{claims: &Claims{Subject: identityID, Email: "legacy@example.com"}}
	r := NewResolver(verifier, store, nil)

	first, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, first.ProfileID)
	assert.Equal(t, 1, store.linkCalls)
	assert.Equal(t, 0, store.upsertCalls)

	// Second resolve finds the linked profile; the migration never reruns.
	second, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, second.ProfileID)
	assert.Equal(t, 1, store.linkCalls)
}

func TestResolveStoredFieldsWinOverMetadata(t *testing.T) {
	identityID := uuid.NewString()
	store := newMockProfileStore()
	idCopy := identityID
	store.byIdentity[identityID] = &profiles.Profile{
		ID:          uuid.New(),
		IdentityID:  &idCopy,
		Email:       "kept@example.com",
		DisplayName: "Stored Name",
		Role:        "admin",
	}

	verifier := &stubVerifier{claims: &Claims{
		Subject:  identityID,
		Email:    "kept@example.com",
		Metadata: map[string]any{"full_name": "Provider Name", "avatar_url": "https://cdn.example.com/p.png"},
	}}
	r := NewResolver(verifier, store, nil)

	p, err := r.Resolve(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, "Stored Name", p.DisplayName)
	// Empty stored avatar falls back to provider metadata.
	assert.Equal(t, "https://cdn.example.com/p.png", p.AvatarURL)
	assert.Equal(t, "admin", p.Role)
}

func TestResolveProfileInitFailureIsFatal(t *testing.T) {
	store := newMockProfileStore()
	store.upsertErr = errors.New("connection refused")

	verifier := &stubVerifier{claims: &Claims{Subject: uuid.NewString(), Email: "new@example.com"}}
	r := NewResolver(verifier, store, nil)

	_, err := r.Resolve(context.Background(), "token")
	assert.ErrorIs(t, err, shared.ErrProfileInit)
}
