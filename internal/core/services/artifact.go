package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// ArtifactService registers built images and resolves their digests.
type ArtifactService struct {
	artifactRepo output.ArtifactRepository
	registry     output.RegistryClient
}

// NewArtifactService creates a new ArtifactService
func NewArtifactService(artifactRepo output.ArtifactRepository, registry output.RegistryClient) *ArtifactService {
	return &ArtifactService{artifactRepo: artifactRepo, registry: registry}
}

// RegisterRequest describes a built image reported by a build step.
type RegisterRequest struct {
	ProjectID  uuid.UUID
	PipelineID uuid.UUID
	RunID      *uuid.UUID
	ImageRepo  string
	Tag        string
	Digest     string
	CommitSHA  string
	ReleaseTag string
}

// Register records a built image as an artifact. When the caller did not
// supply a digest it is resolved through the registry, so promotions always
// move an immutable reference.
func (s *ArtifactService) Register(ctx context.Context, req RegisterRequest) (*domain.Artifact, error) {
	artifact, err := domain.NewArtifact(req.ProjectID, req.PipelineID, req.ImageRepo, req.Tag, req.CommitSHA)
	if err != nil {
		return nil, err
	}
	if req.RunID != nil {
		artifact.SetRunID(*req.RunID)
	}
	if req.ReleaseTag != "" {
		artifact.SetReleaseTag(req.ReleaseTag)
	}

	digest := req.Digest
	if digest == "" && s.registry != nil && s.registry.IsAvailable() {
		digest, err = s.registry.ResolveDigest(ctx, artifact.ImageRepo, artifact.Tag)
		if err != nil {
			return nil, fmt.Errorf("resolve digest for %s:%s: %w", artifact.ImageRepo, artifact.Tag, err)
		}
	}
	if digest != "" {
		artifact.SetDigest(digest)
	} else {
		log.WithFields(log.Fields{
			"image": artifact.ImageRepo,
			"tag":   artifact.Tag,
		}).Warn("artifact registered without digest")
	}

	if err := s.artifactRepo.Create(ctx, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

// Get returns one artifact.
func (s *ArtifactService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.Artifact, error) {
	return s.artifactRepo.GetByID(ctx, projectID, id)
}

// List returns artifacts matching the filter.
func (s *ArtifactService) List(ctx context.Context, filter output.ArtifactListFilter) ([]*domain.Artifact, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.artifactRepo.List(ctx, filter)
}

// Tag stamps a release tag onto an existing artifact.
func (s *ArtifactService) Tag(ctx context.Context, projectID, id uuid.UUID, releaseTag string) (*domain.Artifact, error) {
	artifact, err := s.artifactRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	artifact.SetReleaseTag(releaseTag)
	if err := s.artifactRepo.Update(ctx, projectID, artifact); err != nil {
		return nil, fmt.Errorf("update artifact: %w", err)
	}
	return artifact, nil
}
