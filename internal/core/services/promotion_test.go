package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
	"pipeline-orchestrator/internal/testutil"
)

type promotionFixture struct {
	promotionRepo *testutil.MockPromotionRepo
	artifactRepo  *testutil.MockArtifactRepo
	envRepo       *testutil.MockEnvironmentRepo
	manifests     *testutil.MockManifestClient
	svc           *PromotionService
}

func newPromotionFixture() *promotionFixture {
	f := &promotionFixture{
		promotionRepo: new(testutil.MockPromotionRepo),
		artifactRepo:  new(testutil.MockArtifactRepo),
		envRepo:       new(testutil.MockEnvironmentRepo),
		manifests:     new(testutil.MockManifestClient),
	}
	f.svc = NewPromotionService(f.promotionRepo, f.artifactRepo, f.envRepo, f.manifests)
	return f
}

func testArtifact(projectID uuid.UUID) *domain.Artifact {
	return &domain.Artifact{
		ID:        uuid.New(),
		ProjectID: projectID,
		ImageRepo: "registry.example.com/org/app",
		Tag:       "abc1234",
		Digest:    "sha256:deadbeef",
		CommitSHA: "abc1234def",
	}
}

func TestPromote_FirstEnvironment(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	env := &domain.Environment{
		ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment,
		Rank: 1, ManifestPath: "apps/app/development.yaml",
	}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, env.ID).
		Return(nil, domain.ErrPromotionNotFound)
	f.promotionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)
	f.manifests.On("IsAvailable").Return(true)
	f.manifests.On("PinImage", mock.Anything, mock.MatchedBy(func(u output.ManifestUpdate) bool {
		return u.Path == env.ManifestPath && u.Digest == artifact.Digest
	})).Return("manifest-sha", nil)
	f.promotionRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)

	promotion, err := f.svc.Promote(context.Background(), projectID, artifact.ID, env.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.PromotionStatusPending, promotion.Status)
	assert.Equal(t, "manifest-sha", promotion.ManifestCommitSHA)
	f.promotionRepo.AssertExpectations(t)
	f.manifests.AssertExpectations(t)
}

func TestPromote_MissingDigest(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	artifact.Digest = ""
	env := &domain.Environment{ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment, Rank: 1}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)

	_, err := f.svc.Promote(context.Background(), projectID, artifact.ID, env.ID)
	assert.ErrorIs(t, err, domain.ErrArtifactDigestMissing)
}

func TestPromote_ReleaseTagRequired(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	env := &domain.Environment{
		ID: uuid.New(), ProjectID: projectID, Name: domain.EnvProduction,
		Rank: 1, RequiresReleaseTag: true,
	}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)

	_, err := f.svc.Promote(context.Background(), projectID, artifact.ID, env.ID)
	assert.ErrorIs(t, err, domain.ErrReleaseTagRequired)
}

func TestPromote_PreviousEnvNotSynced(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	dev := &domain.Environment{ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment, Rank: 1}
	preprod := &domain.Environment{ID: uuid.New(), ProjectID: projectID, Name: domain.EnvPreProd, Rank: 2}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, preprod.ID).Return(preprod, nil)
	f.envRepo.On("GetByRank", mock.Anything, projectID, 1).Return(dev, nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, dev.ID).
		Return(&domain.Promotion{Status: domain.PromotionStatusPending}, nil)

	_, err := f.svc.Promote(context.Background(), projectID, artifact.ID, preprod.ID)
	assert.ErrorIs(t, err, domain.ErrPreviousEnvNotSynced)
}

func TestPromote_RankLadderNoPriorPromotion(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	dev := &domain.Environment{ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment, Rank: 1}
	preprod := &domain.Environment{ID: uuid.New(), ProjectID: projectID, Name: domain.EnvPreProd, Rank: 2}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, preprod.ID).Return(preprod, nil)
	f.envRepo.On("GetByRank", mock.Anything, projectID, 1).Return(dev, nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, dev.ID).
		Return(nil, domain.ErrPromotionNotFound)

	_, err := f.svc.Promote(context.Background(), projectID, artifact.ID, preprod.ID)
	assert.ErrorIs(t, err, domain.ErrPreviousEnvNotSynced)
}

func TestPromote_AlreadyPromoted(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	env := &domain.Environment{ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment, Rank: 1}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, env.ID).
		Return(&domain.Promotion{Status: domain.PromotionStatusSynced}, nil)

	_, err := f.svc.Promote(context.Background(), projectID, artifact.ID, env.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPromoted)
}

func TestPromote_RetryAfterFailure(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	env := &domain.Environment{
		ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment,
		Rank: 1, ManifestPath: "apps/app/development.yaml",
	}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, env.ID).
		Return(&domain.Promotion{Status: domain.PromotionStatusFailed}, nil)
	f.promotionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)
	f.manifests.On("IsAvailable").Return(true)
	f.manifests.On("PinImage", mock.Anything, mock.Anything).Return("retry-sha", nil)
	f.promotionRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)

	promotion, err := f.svc.Promote(context.Background(), projectID, artifact.ID, env.ID)
	assert.NoError(t, err)
	assert.Equal(t, "retry-sha", promotion.ManifestCommitSHA)
}

func TestPromote_PinImageFailureRecordedNotReturned(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	artifact := testArtifact(projectID)
	env := &domain.Environment{
		ID: uuid.New(), ProjectID: projectID, Name: domain.EnvDevelopment,
		Rank: 1, ManifestPath: "apps/app/development.yaml",
	}

	f.artifactRepo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	f.envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, env.ID).
		Return(nil, domain.ErrPromotionNotFound)
	f.promotionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)
	f.manifests.On("IsAvailable").Return(true)
	f.manifests.On("PinImage", mock.Anything, mock.Anything).Return("", errors.New("conflict on push"))
	f.promotionRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)

	promotion, err := f.svc.Promote(context.Background(), projectID, artifact.ID, env.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.PromotionStatusFailed, promotion.Status)
	assert.Contains(t, promotion.LastError, "conflict on push")
}

func TestPromoteForStage_StampsReleaseTag(t *testing.T) {
	f := newPromotionFixture()
	projectID := uuid.New()
	pipelineID := uuid.New()
	artifact := testArtifact(projectID)
	env := &domain.Environment{
		ID: uuid.New(), ProjectID: projectID, Name: domain.EnvProduction,
		Rank: 1, RequiresReleaseTag: true, ManifestPath: "apps/app/production.yaml",
	}

	run := &domain.PipelineRun{
		ID: uuid.New(), ProjectID: projectID, PipelineID: pipelineID,
		Trigger: domain.TriggerEvent{
			Kind: domain.TriggerTag, CommitSHA: artifact.CommitSHA, ReleaseTag: "v1.2.0",
		},
	}
	stage := &domain.Stage{Name: "release", Trigger: domain.TriggerTag, TargetEnv: domain.EnvProduction}

	f.envRepo.On("GetByName", mock.Anything, projectID, domain.EnvProduction).Return(env, nil)
	f.artifactRepo.On("GetByCommit", mock.Anything, projectID, pipelineID, artifact.CommitSHA).Return(artifact, nil)
	f.artifactRepo.On("Update", mock.Anything, projectID, artifact).Return(nil)
	f.promotionRepo.On("GetByArtifactAndEnv", mock.Anything, projectID, artifact.ID, env.ID).
		Return(nil, domain.ErrPromotionNotFound)
	f.promotionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)
	f.manifests.On("IsAvailable").Return(true)
	f.manifests.On("PinImage", mock.Anything, mock.Anything).Return("sha", nil)
	f.promotionRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Promotion")).Return(nil)

	_, err := f.svc.PromoteForStage(context.Background(), run, stage)
	assert.NoError(t, err)
	assert.Equal(t, "v1.2.0", artifact.ReleaseTag)
}
