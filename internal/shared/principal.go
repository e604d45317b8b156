package shared

import "github.com/google/uuid"

// Principal describes the authenticated actor behind a request. It is the
// application-level view of a verified identity, distinct from the raw
// identity-provider record: ProfileID is the local row, IdentityID the
// provider-side id linked to it.
type Principal struct {
	IdentityID  uuid.UUID
	ProfileID   uuid.UUID
	Role        string
	Email       string
	DisplayName string
	AvatarURL   string
}
