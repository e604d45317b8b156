package categories

import (
	"time"

	"github.com/google/uuid"
)

// Category groups items on a business's menu. Ownership is transitive:
// a category belongs to exactly one business, and the business's owner
// owns the category.
type Category struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateParams carries the fields for a new category.
type CreateParams struct {
	BusinessID uuid.UUID
	Name       string
	Position   int
}

// UpdateParams carries optional field updates.
type UpdateParams struct {
	Name     *string
	Position *int
}
