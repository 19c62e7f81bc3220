package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/testutil"
)

func artifactFixture() (*testutil.MockArtifactRepo, *testutil.MockRegistryClient, *ArtifactService) {
	repo := new(testutil.MockArtifactRepo)
	registry := new(testutil.MockRegistryClient)
	return repo, registry, NewArtifactService(repo, registry)
}

func TestRegisterArtifact_WithDigest(t *testing.T) {
	repo, registry, svc := artifactFixture()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Artifact")).Return(nil)

	artifact, err := svc.Register(context.Background(), RegisterRequest{
		ProjectID:  uuid.New(),
		PipelineID: uuid.New(),
		ImageRepo:  "registry.example.com/org/app",
		Tag:        "abc1234",
		Digest:     "sha256:deadbeef",
		CommitSHA:  "abc1234def",
	})
	assert.NoError(t, err)
	assert.Equal(t, "sha256:deadbeef", artifact.Digest)
	assert.Equal(t, "registry.example.com/org/app@sha256:deadbeef", artifact.Reference())
	registry.AssertNotCalled(t, "ResolveDigest")
}

func TestRegisterArtifact_ResolvesDigest(t *testing.T) {
	repo, registry, svc := artifactFixture()

	registry.On("IsAvailable").Return(true)
	registry.On("ResolveDigest", mock.Anything, "registry.example.com/org/app", "abc1234").
		Return("sha256:cafe", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Artifact")).Return(nil)

	artifact, err := svc.Register(context.Background(), RegisterRequest{
		ProjectID:  uuid.New(),
		PipelineID: uuid.New(),
		ImageRepo:  "registry.example.com/org/app",
		Tag:        "abc1234",
		CommitSHA:  "abc1234def",
	})
	assert.NoError(t, err)
	assert.Equal(t, "sha256:cafe", artifact.Digest)
	registry.AssertExpectations(t)
}

func TestRegisterArtifact_ResolveFails(t *testing.T) {
	repo, registry, svc := artifactFixture()

	registry.On("IsAvailable").Return(true)
	registry.On("ResolveDigest", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("manifest unknown"))

	_, err := svc.Register(context.Background(), RegisterRequest{
		ProjectID:  uuid.New(),
		PipelineID: uuid.New(),
		ImageRepo:  "registry.example.com/org/app",
		Tag:        "abc1234",
		CommitSHA:  "abc1234def",
	})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterArtifact_NoRegistry(t *testing.T) {
	repo, registry, svc := artifactFixture()

	registry.On("IsAvailable").Return(false)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Artifact")).Return(nil)

	artifact, err := svc.Register(context.Background(), RegisterRequest{
		ProjectID:  uuid.New(),
		PipelineID: uuid.New(),
		ImageRepo:  "registry.example.com/org/app",
		Tag:        "abc1234",
		CommitSHA:  "abc1234def",
	})
	assert.NoError(t, err)
	assert.Empty(t, artifact.Digest)
}

func TestTagArtifact(t *testing.T) {
	repo, _, svc := artifactFixture()

	projectID := uuid.New()
	artifact := testArtifact(projectID)
	repo.On("GetByID", mock.Anything, projectID, artifact.ID).Return(artifact, nil)
	repo.On("Update", mock.Anything, projectID, artifact).Return(nil)

	tagged, err := svc.Tag(context.Background(), projectID, artifact.ID, "v2.0.0")
	assert.NoError(t, err)
	assert.Equal(t, "v2.0.0", tagged.ReleaseTag)
}
