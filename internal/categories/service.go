package categories

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for categories.
type RepositoryPort interface {
	Create(ctx context.Context, params CreateParams) (*Category, error)
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]Category, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, businessID uuid.UUID, orderedIDs []uuid.UUID) error
	IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error)
}

// Service handles category business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create adds a category to a business's menu.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	return s.repo.Create(ctx, params)
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.Get(ctx, id)
}

// ListByBusiness returns a business's categories in menu order.
func (s *Service) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]Category, error) {
	return s.repo.ListByBusiness(ctx, businessID)
}

// Update mutates a category.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error) {
	return s.repo.Update(ctx, id, params)
}

// Delete removes a category and its items.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Reorder rewrites menu positions for a business's categories.
func (s *Service) Reorder(ctx context.Context, businessID uuid.UUID, orderedIDs []uuid.UUID) error {
	return s.repo.Reorder(ctx, businessID, orderedIDs)
}

// IsOwner reports whether the profile owns the category.
func (s *Service) IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error) {
	return s.repo.IsOwner(ctx, id, profileID)
}
