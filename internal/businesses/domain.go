package businesses

import (
	"time"

	"github.com/google/uuid"
)

// Business is a tenant's storefront, the root of the ownership chain:
// every category and item hangs off exactly one business.
type Business struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	LogoURL   string    `json:"logo_url"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateParams carries the fields for a new business.
type CreateParams struct {
	OwnerID uuid.UUID
	Name    string
	Slug    string
	LogoURL string
	Address string
	Phone   string
}

// UpdateParams carries optional field updates; nil leaves a field unchanged.
type UpdateParams struct {
	Name    *string
	Slug    *string
	LogoURL *string
	Address *string
	Phone   *string
}
