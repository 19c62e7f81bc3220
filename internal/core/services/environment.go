package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// EnvironmentService manages the ordered set of deployment environments.
type EnvironmentService struct {
	envRepo       output.EnvironmentRepository
	promotionRepo output.PromotionRepository
}

// NewEnvironmentService creates a new EnvironmentService
func NewEnvironmentService(envRepo output.EnvironmentRepository, promotionRepo output.PromotionRepository) *EnvironmentService {
	return &EnvironmentService{envRepo: envRepo, promotionRepo: promotionRepo}
}

// Create registers a new environment.
func (s *EnvironmentService) Create(
	ctx context.Context,
	projectID uuid.UUID,
	name, description string,
	rank int,
	namespace, manifestPath string,
	requiresReleaseTag bool,
) (*domain.Environment, error) {
	env, err := domain.NewEnvironment(projectID, name, description, rank, namespace, manifestPath, requiresReleaseTag)
	if err != nil {
		return nil, err
	}
	if err := s.envRepo.Create(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// Get returns one environment.
func (s *EnvironmentService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.Environment, error) {
	return s.envRepo.GetByID(ctx, projectID, id)
}

// List returns the project's environments in rank order.
func (s *EnvironmentService) List(ctx context.Context, projectID uuid.UUID) ([]*domain.Environment, error) {
	return s.envRepo.List(ctx, projectID)
}

// Update applies a partial update.
func (s *EnvironmentService) Update(
	ctx context.Context,
	projectID, id uuid.UUID,
	name, description, namespace, manifestPath, externalID *string,
	rank *int,
	requiresReleaseTag *bool,
) (*domain.Environment, error) {
	env, err := s.envRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if err := env.Update(name, description, namespace, manifestPath, externalID, rank, requiresReleaseTag); err != nil {
		return nil, err
	}
	if err := s.envRepo.Update(ctx, projectID, env); err != nil {
		return nil, fmt.Errorf("update environment: %w", err)
	}
	return env, nil
}

// Delete removes an environment unless promotions were recorded into it.
func (s *EnvironmentService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	if _, err := s.envRepo.GetByID(ctx, projectID, id); err != nil {
		return err
	}
	count, err := s.promotionRepo.CountByEnvironment(ctx, projectID, id)
	if err != nil {
		return fmt.Errorf("count promotions: %w", err)
	}
	if count > 0 {
		return domain.ErrEnvironmentHasPromotions
	}
	return s.envRepo.Delete(ctx, projectID, id)
}
