// Package identity resolves bearer credentials into application principals.
// Token issuance and verification keys belong to the external identity
// provider; this package only consumes them.
package identity

import "context"

// Claims is the verified content of a provider-issued token.
type Claims struct {
	// Subject is the provider-side identity id.
	Subject string
	Email   string
	// Metadata is the provider's free-form user metadata blob. Display
	// fields are extracted from it on first sight of an identity.
	Metadata map[string]any
}

// ExternalIdentity is a user record as held by the identity provider.
type ExternalIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier validates a raw bearer token against the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Provider is the administrative surface of the identity provider consumed
// by user management and the account purge.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string) (*ExternalIdentity, error)
	DeleteIdentity(ctx context.Context, id string) error
	ListIdentities(ctx context.Context, email string) ([]ExternalIdentity, error)
}
