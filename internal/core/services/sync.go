package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// SyncService reconciles promotion records against the cluster-side GitOps
// controller: a promotion is SYNCED once the controller reports the manifest
// commit applied.
type SyncService struct {
	promotionRepo output.PromotionRepository
	envRepo       output.EnvironmentRepository
	gitops        output.GitOpsClient
}

// NewSyncService creates a new SyncService
func NewSyncService(
	promotionRepo output.PromotionRepository,
	envRepo output.EnvironmentRepository,
	gitops output.GitOpsClient,
) *SyncService {
	return &SyncService{
		promotionRepo: promotionRepo,
		envRepo:       envRepo,
		gitops:        gitops,
	}
}

// SyncPromotion refreshes one promotion's status from the cluster.
func (s *SyncService) SyncPromotion(ctx context.Context, projectID, promotionID uuid.UUID) (*domain.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, projectID, promotionID)
	if err != nil {
		return nil, err
	}

	if s.gitops == nil || !s.gitops.IsAvailable() {
		return promotion, nil
	}
	if promotion.Status != domain.PromotionStatusPending || promotion.ManifestCommitSHA == "" {
		return promotion, nil
	}

	env, err := s.envRepo.GetByID(ctx, projectID, promotion.EnvironmentID)
	if err != nil {
		return nil, err
	}

	state, err := s.gitops.GetSyncState(ctx, env.Namespace, env.KustomizationName())
	if err != nil {
		return nil, err
	}

	switch {
	case state.Ready && strings.Contains(state.Revision, promotion.ManifestCommitSHA):
		promotion.MarkSynced()
	case state.Error != "":
		promotion.MarkFailed(state.Error)
	default:
		// Controller has not picked up the commit yet; stay pending.
		return promotion, nil
	}

	if err := s.promotionRepo.Update(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// Poll periodically reconciles pending promotions until the context is
// cancelled. It is meant to run on its own goroutine.
func (s *SyncService) Poll(ctx context.Context, interval time.Duration) {
	if s.gitops == nil || !s.gitops.IsAvailable() {
		log.Info("gitops client unavailable, sync poller disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *SyncService) pollOnce(ctx context.Context) {
	pending, err := s.promotionRepo.ListPending(ctx, 50)
	if err != nil {
		log.WithError(err).Error("list pending promotions")
		return
	}
	for _, promotion := range pending {
		if _, err := s.SyncPromotion(ctx, promotion.ProjectID, promotion.ID); err != nil {
			log.WithError(err).WithField("promotion_id", promotion.ID).Warn("sync promotion")
		}
	}
}
