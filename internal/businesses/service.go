package businesses

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for businesses.
type RepositoryPort interface {
	Create(ctx context.Context, params CreateParams) (*Business, error)
	Get(ctx context.Context, id uuid.UUID) (*Business, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Business, error)
	List(ctx context.Context, page, perPage int) ([]Business, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Business, error)
	IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error)
	Purge(ctx context.Context, id uuid.UUID) error
}

// Service handles business logic for businesses.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a new business owned by the creating principal.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Business, error) {
	return s.repo.Create(ctx, params)
}

// Get returns a single business.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Business, error) {
	return s.repo.Get(ctx, id)
}

// ListByOwner returns the businesses owned by a profile.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Business, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// List returns a page of all businesses.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Business, error) {
	return s.repo.List(ctx, page, perPage)
}

// Count returns the total number of businesses.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Update mutates a business.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Business, error) {
	return s.repo.Update(ctx, id, params)
}

// Delete removes a business and everything under it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Purge(ctx, id)
}

// IsOwner reports whether the profile owns the business.
func (s *Service) IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error) {
	return s.repo.IsOwner(ctx, id, profileID)
}
