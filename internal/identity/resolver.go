package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/shared"
)

// Display fields are read from provider metadata in this order; the first
// key present wins.
var (
	nameMetadataKeys   = []string{"full_name", "name", "user_name", "preferred_username"}
	avatarMetadataKeys = []string{"avatar_url", "picture"}
)

var titleCaser = cases.Title(language.Und)

// ProfileStore is the slice of profile persistence the resolver needs.
type ProfileStore interface {
	FindByIdentityID(ctx context.Context, identityID string) (*profiles.Profile, error)
	LinkIdentity(ctx context.Context, email, identityID string) (*profiles.Profile, error)
	UpsertByIdentity(ctx context.Context, params profiles.UpsertParams) (*profiles.Profile, error)
}

// Resolver turns bearer credentials into principals, provisioning a local
// profile the first time an identity is seen.
type Resolver struct {
	verifier Verifier
	store    ProfileStore
	logger   *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(verifier Verifier, store ProfileStore, logger *slog.Logger) *Resolver {
	return &Resolver{verifier: verifier, store: store, logger: logger}
}

// Resolve verifies the bearer credential and returns the acting principal.
// Lookup order: profile linked to the identity id, then an unlinked legacy
// profile matching the identity's email (adopted by writing the identity id
// onto it), then auto-provisioning. Both fallbacks are idempotent, so a
// retried request settles on the same profile row.
func (r *Resolver) Resolve(ctx context.Context, bearer string) (*shared.Principal, error) {
	if strings.TrimSpace(bearer) == "" {
		return nil, shared.ErrMissingCredential
	}

	claims, err := r.verifier.Verify(ctx, bearer)
	if err != nil {
		return nil, err
	}
	identityID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, shared.ErrInvalidCredential
	}

	profile, err := r.lookupOrProvision(ctx, claims)
	if err != nil {
		return nil, err
	}

	role := profile.Role
	if role == "" {
		role = "user"
	}
	return &shared.Principal{
		IdentityID:  identityID,
		ProfileID:   profile.ID,
		Role:        role,
		Email:       profile.Email,
		DisplayName: firstNonEmpty(profile.DisplayName, metadataString(claims.Metadata, nameMetadataKeys), fallbackDisplayName(claims.Email)),
		AvatarURL:   firstNonEmpty(profile.AvatarURL, metadataString(claims.Metadata, avatarMetadataKeys)),
	}, nil
}

func (r *Resolver) lookupOrProvision(ctx context.Context, claims *Claims) (*profiles.Profile, error) {
	profile, err := r.store.FindByIdentityID(ctx, claims.Subject)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("identity: lookup profile: %w", err)
	}

	// One-time migration for profiles created before identity linking.
	if claims.Email != "" {
		profile, err = r.store.LinkIdentity(ctx, claims.Email, claims.Subject)
		if err == nil {
			if r.logger != nil {
				r.logger.Info("adopted legacy profile", slog.String("profile_id", profile.ID.String()))
			}
			return profile, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("identity: link profile: %w", err)
		}
	}

	profile, err = r.store.UpsertByIdentity(ctx, profiles.UpsertParams{
		IdentityID:  claims.Subject,
		Email:       claims.Email,
		DisplayName: firstNonEmpty(metadataString(claims.Metadata, nameMetadataKeys), fallbackDisplayName(claims.Email)),
		AvatarURL:   metadataString(claims.Metadata, avatarMetadataKeys),
	})
	if err != nil {
		// Without a profile id no caller can proceed safely.
		return nil, fmt.Errorf("%w: %v", shared.ErrProfileInit, err)
	}
	return profile, nil
}

// metadataString returns the first non-empty string value among keys.
func metadataString(metadata map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := metadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// fallbackDisplayName derives a presentable name from the email local part.
func fallbackDisplayName(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return ""
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return titleCaser.String(local)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
