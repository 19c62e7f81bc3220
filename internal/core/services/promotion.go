package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// PromotionService advances artifact references through environments by
// pinning the image digest into the environment's manifest in the GitOps
// configuration repository.
type PromotionService struct {
	promotionRepo output.PromotionRepository
	artifactRepo  output.ArtifactRepository
	envRepo       output.EnvironmentRepository
	manifests     output.ManifestClient
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(
	promotionRepo output.PromotionRepository,
	artifactRepo output.ArtifactRepository,
	envRepo output.EnvironmentRepository,
	manifests output.ManifestClient,
) *PromotionService {
	return &PromotionService{
		promotionRepo: promotionRepo,
		artifactRepo:  artifactRepo,
		envRepo:       envRepo,
		manifests:     manifests,
	}
}

// PromoteForStage advances the run's artifact into the stage's target
// environment. The artifact is resolved by the trigger commit.
func (s *PromotionService) PromoteForStage(ctx context.Context, run *domain.PipelineRun, stage *domain.Stage) (*domain.Promotion, error) {
	env, err := s.envRepo.GetByName(ctx, run.ProjectID, stage.TargetEnv)
	if err != nil {
		return nil, fmt.Errorf("get target environment: %w", err)
	}

	artifact, err := s.artifactRepo.GetByCommit(ctx, run.ProjectID, run.PipelineID, run.Trigger.CommitSHA)
	if err != nil {
		return nil, fmt.Errorf("get artifact for commit %s: %w", run.Trigger.CommitSHA, err)
	}

	// A release tag on the trigger is stamped onto the artifact so later
	// manual promotions see it too.
	if run.Trigger.ReleaseTag != "" && artifact.ReleaseTag == "" {
		artifact.SetReleaseTag(run.Trigger.ReleaseTag)
		if err := s.artifactRepo.Update(ctx, run.ProjectID, artifact); err != nil {
			return nil, fmt.Errorf("update artifact release tag: %w", err)
		}
	}

	return s.promote(ctx, artifact, env)
}

// Promote manually advances an artifact into an environment, enforcing the
// same rules as stage-driven promotion.
func (s *PromotionService) Promote(ctx context.Context, projectID, artifactID, environmentID uuid.UUID) (*domain.Promotion, error) {
	artifact, err := s.artifactRepo.GetByID(ctx, projectID, artifactID)
	if err != nil {
		return nil, err
	}
	env, err := s.envRepo.GetByID(ctx, projectID, environmentID)
	if err != nil {
		return nil, err
	}
	return s.promote(ctx, artifact, env)
}

func (s *PromotionService) promote(ctx context.Context, artifact *domain.Artifact, env *domain.Environment) (*domain.Promotion, error) {
	if artifact.Digest == "" {
		return nil, domain.ErrArtifactDigestMissing
	}
	if env.RequiresReleaseTag && artifact.ReleaseTag == "" {
		return nil, domain.ErrReleaseTagRequired
	}

	// Promotions climb the rank ladder one environment at a time: the same
	// artifact must be synced in the preceding environment first.
	if env.Rank > 1 {
		prev, err := s.envRepo.GetByRank(ctx, env.ProjectID, env.Rank-1)
		if err != nil {
			return nil, fmt.Errorf("get preceding environment: %w", err)
		}
		prevPromo, err := s.promotionRepo.GetByArtifactAndEnv(ctx, env.ProjectID, artifact.ID, prev.ID)
		if err != nil {
			if errors.Is(err, domain.ErrPromotionNotFound) {
				return nil, domain.ErrPreviousEnvNotSynced
			}
			return nil, err
		}
		if prevPromo.Status != domain.PromotionStatusSynced {
			return nil, domain.ErrPreviousEnvNotSynced
		}
	}

	existing, err := s.promotionRepo.GetByArtifactAndEnv(ctx, env.ProjectID, artifact.ID, env.ID)
	if err != nil && !errors.Is(err, domain.ErrPromotionNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != domain.PromotionStatusFailed {
		return nil, domain.ErrAlreadyPromoted
	}

	promotion, err := domain.NewPromotion(env.ProjectID, artifact.ID, env.ID)
	if err != nil {
		return nil, err
	}
	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}

	if s.manifests == nil || !s.manifests.IsAvailable() {
		log.WithField("environment", env.Name).Warn("manifest client unavailable, promotion left pending")
		return promotion, nil
	}

	commitSHA, err := s.manifests.PinImage(ctx, output.ManifestUpdate{
		Path:        env.ManifestPath,
		Environment: env.Name,
		ImageRepo:   artifact.ImageRepo,
		Digest:      artifact.Digest,
		Message:     fmt.Sprintf("promote %s to %s (%s)", artifact.ImageRepo, env.Name, shortSHA(artifact.CommitSHA)),
	})
	if err != nil {
		promotion.MarkFailed(err.Error())
		if uerr := s.promotionRepo.Update(ctx, promotion); uerr != nil {
			log.WithError(uerr).Error("record promotion failure")
		}
		return promotion, nil
	}

	promotion.SetManifestCommit(commitSHA)
	if err := s.promotionRepo.Update(ctx, promotion); err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	return promotion, nil
}

// Get returns one promotion.
func (s *PromotionService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.Promotion, error) {
	return s.promotionRepo.GetByID(ctx, projectID, id)
}

// List returns promotions matching the filter.
func (s *PromotionService) List(ctx context.Context, filter output.PromotionListFilter) ([]*domain.Promotion, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.promotionRepo.List(ctx, filter)
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
