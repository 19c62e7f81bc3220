package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	"pipeline-orchestrator/internal/testutil"
)

func environmentFixture() (*testutil.MockEnvironmentRepo, *testutil.MockPromotionRepo, *EnvironmentService) {
	envRepo := new(testutil.MockEnvironmentRepo)
	promotionRepo := new(testutil.MockPromotionRepo)
	return envRepo, promotionRepo, NewEnvironmentService(envRepo, promotionRepo)
}

func TestCreateEnvironment(t *testing.T) {
	envRepo, _, svc := environmentFixture()

	envRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Environment")).Return(nil)

	env, err := svc.Create(context.Background(), uuid.New(), domain.EnvProduction, "",
		3, "prod", "apps/app/production.yaml", true)
	assert.NoError(t, err)
	assert.Equal(t, 3, env.Rank)
	assert.True(t, env.RequiresReleaseTag)
	envRepo.AssertExpectations(t)
}

func TestCreateEnvironment_Invalid(t *testing.T) {
	envRepo, _, svc := environmentFixture()

	_, err := svc.Create(context.Background(), uuid.New(), "", "", 1, "ns", "path.yaml", false)
	assert.ErrorIs(t, err, domain.ErrInvalidEnvironmentName)

	_, err = svc.Create(context.Background(), uuid.New(), "dev", "", 0, "ns", "path.yaml", false)
	assert.ErrorIs(t, err, domain.ErrInvalidEnvironmentRank)

	envRepo.AssertNotCalled(t, "Create")
}

func TestUpdateEnvironment(t *testing.T) {
	envRepo, _, svc := environmentFixture()

	projectID := uuid.New()
	env, err := domain.NewEnvironment(projectID, "development", "", 1, "dev", "apps/app/development.yaml", false)
	assert.NoError(t, err)

	envRepo.On("GetByID", mock.Anything, projectID, env.ID).Return(env, nil)
	envRepo.On("Update", mock.Anything, projectID, env).Return(nil)

	rank := 2
	updated, err := svc.Update(context.Background(), projectID, env.ID,
		nil, nil, nil, nil, nil, &rank, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, updated.Rank)
}

func TestDeleteEnvironment(t *testing.T) {
	envRepo, promotionRepo, svc := environmentFixture()

	projectID, id := uuid.New(), uuid.New()
	envRepo.On("GetByID", mock.Anything, projectID, id).Return(&domain.Environment{ID: id}, nil)
	promotionRepo.On("CountByEnvironment", mock.Anything, projectID, id).Return(0, nil)
	envRepo.On("Delete", mock.Anything, projectID, id).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), projectID, id))
	envRepo.AssertExpectations(t)
}

func TestDeleteEnvironment_HasPromotions(t *testing.T) {
	envRepo, promotionRepo, svc := environmentFixture()

	projectID, id := uuid.New(), uuid.New()
	envRepo.On("GetByID", mock.Anything, projectID, id).Return(&domain.Environment{ID: id}, nil)
	promotionRepo.On("CountByEnvironment", mock.Anything, projectID, id).Return(4, nil)

	err := svc.Delete(context.Background(), projectID, id)
	assert.ErrorIs(t, err, domain.ErrEnvironmentHasPromotions)
	envRepo.AssertNotCalled(t, "Delete")
}
