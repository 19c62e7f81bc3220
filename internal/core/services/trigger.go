package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// TriggerService turns source-control events into pipeline runs.
type TriggerService struct {
	pipelineRepo output.PipelineRepository
	runs         *RunService
}

// NewTriggerService creates a new TriggerService
func NewTriggerService(pipelineRepo output.PipelineRepository, runs *RunService) *TriggerService {
	return &TriggerService{pipelineRepo: pipelineRepo, runs: runs}
}

// HandleSourceEvent matches a webhook event to the pipeline registered for
// its repository, creates a run and starts it asynchronously.
func (s *TriggerService) HandleSourceEvent(ctx context.Context, event domain.TriggerEvent) (*domain.PipelineRun, error) {
	if event.Repository == "" {
		return nil, domain.ErrMissingRepository
	}
	if event.CommitSHA == "" {
		return nil, domain.ErrMissingCommitSHA
	}

	pipeline, err := s.pipelineRepo.GetByRepoURL(ctx, event.Repository)
	if err != nil {
		return nil, fmt.Errorf("resolve pipeline for %s: %w", event.Repository, err)
	}

	run, err := s.runs.Trigger(ctx, pipeline, event)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"pipeline": pipeline.Name,
		"run_id":   run.ID,
		"kind":     event.Kind,
		"ref":      event.Ref,
	}).Info("run triggered by source event")

	s.runs.StartAsync(pipeline, run)
	return run, nil
}

// TriggerManual starts a run outside of any source event, against the
// pipeline's default branch unless a ref is given.
func (s *TriggerService) TriggerManual(ctx context.Context, projectID, pipelineID uuid.UUID, ref, commitSHA, releaseTag, actor string) (*domain.PipelineRun, error) {
	pipeline, err := s.pipelineRepo.GetByID(ctx, projectID, pipelineID)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref = "refs/heads/" + pipeline.DefaultBranch
	}

	event := domain.TriggerEvent{
		Kind:       domain.TriggerManual,
		Repository: pipeline.RepoURL,
		Ref:        ref,
		CommitSHA:  commitSHA,
		ReleaseTag: releaseTag,
		Actor:      actor,
	}

	run, err := s.runs.Trigger(ctx, pipeline, event)
	if err != nil {
		return nil, err
	}
	s.runs.StartAsync(pipeline, run)
	return run, nil
}
