package items

import (
	"time"

	"github.com/google/uuid"
)

// Item is a single entry on a menu. It belongs to exactly one category and
// inherits ownership through the category's business.
type Item struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	ImageURL    string    `json:"image_url"`
	Position    int       `json:"position"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateParams carries the fields for a new item.
type CreateParams struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	ImageURL    string
	Position    int
}

// UpdateParams carries optional field updates.
type UpdateParams struct {
	Name        *string
	Description *string
	PriceCents  *int64
	ImageURL    *string
	Position    *int
}
