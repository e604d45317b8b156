package profiles

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the local account record for a verified identity. IdentityID
// holds the provider-side id as stored; legacy rows created before identity
// linking may carry none at all, which is why it is a nullable string rather
// than a parsed UUID.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	IdentityID  *string   `json:"-"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertParams carries the fields written when a profile is provisioned for
// a newly seen identity.
type UpsertParams struct {
	IdentityID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// UpdateParams carries the caller-editable display fields.
type UpdateParams struct {
	DisplayName *string
	AvatarURL   *string
}
