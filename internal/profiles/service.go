package profiles

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for profiles.
type RepositoryPort interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error)
}

// Service handles profile business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the profile with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// Update mutates display fields on the profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error) {
	return s.repo.Update(ctx, id, params)
}
