package items

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for items.
type RepositoryPort interface {
	Create(ctx context.Context, params CreateParams) (*Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]Item, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Item, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, categoryID uuid.UUID, orderedIDs []uuid.UUID) error
	IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error)
}

// Service handles item business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create adds an item to a category.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Item, error) {
	return s.repo.Create(ctx, params)
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.Get(ctx, id)
}

// ListByCategory returns a category's items in menu order.
func (s *Service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]Item, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

// Update mutates an item.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Item, error) {
	return s.repo.Update(ctx, id, params)
}

// SetAvailability marks an item available or sold out.
func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*Item, error) {
	return s.repo.SetAvailability(ctx, id, available)
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Reorder rewrites menu positions for a category's items.
func (s *Service) Reorder(ctx context.Context, categoryID uuid.UUID, orderedIDs []uuid.UUID) error {
	return s.repo.Reorder(ctx, categoryID, orderedIDs)
}

// IsOwner reports whether the profile owns the item.
func (s *Service) IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error) {
	return s.repo.IsOwner(ctx, id, profileID)
}
