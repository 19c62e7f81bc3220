package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// PipelineService manages pipeline definitions.
type PipelineService struct {
	pipelineRepo output.PipelineRepository
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(pipelineRepo output.PipelineRepository) *PipelineService {
	return &PipelineService{pipelineRepo: pipelineRepo}
}

// Create registers a pipeline for a repository after validating its stage
// graph.
func (s *PipelineService) Create(
	ctx context.Context,
	projectID uuid.UUID,
	name, description, repoURL, defaultBranch string,
	stages []domain.Stage,
	labels map[string]string,
) (*domain.Pipeline, error) {
	pipeline, err := domain.NewPipeline(projectID, name, description, repoURL, defaultBranch, stages)
	if err != nil {
		return nil, err
	}
	if labels != nil {
		pipeline.Labels = labels
	}

	if err := s.pipelineRepo.Create(ctx, pipeline); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// Get returns one pipeline.
func (s *PipelineService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.Pipeline, error) {
	return s.pipelineRepo.GetByID(ctx, projectID, id)
}

// List returns pipelines matching the filter.
func (s *PipelineService) List(ctx context.Context, filter output.PipelineListFilter) ([]*domain.Pipeline, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.pipelineRepo.List(ctx, filter)
}

// Update applies a partial update; a non-nil stages slice replaces and
// re-validates the stage graph.
func (s *PipelineService) Update(
	ctx context.Context,
	projectID, id uuid.UUID,
	name, description, defaultBranch *string,
	stages []domain.Stage,
	labels map[string]string,
) (*domain.Pipeline, error) {
	pipeline, err := s.pipelineRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if err := pipeline.Update(name, description, defaultBranch, stages); err != nil {
		return nil, err
	}
	if labels != nil {
		pipeline.Labels = labels
	}

	if err := s.pipelineRepo.Update(ctx, projectID, pipeline); err != nil {
		return nil, fmt.Errorf("update pipeline: %w", err)
	}
	return pipeline, nil
}

// Delete removes a pipeline definition.
func (s *PipelineService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	if _, err := s.pipelineRepo.GetByID(ctx, projectID, id); err != nil {
		return err
	}
	return s.pipelineRepo.Delete(ctx, projectID, id)
}
