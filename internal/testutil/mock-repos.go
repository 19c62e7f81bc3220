package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// MockPipelineRepo is a mock of PipelineRepository.
type MockPipelineRepo struct {
	mock.Mock
}

func (m *MockPipelineRepo) Create(ctx context.Context, pipeline *domain.Pipeline) error {
	args := m.Called(ctx, pipeline)
	return args.Error(0)
}

func (m *MockPipelineRepo) GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Pipeline, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pipeline), args.Error(1)
}

func (m *MockPipelineRepo) GetByRepoURL(ctx context.Context, repoURL string) (*domain.Pipeline, error) {
	args := m.Called(ctx, repoURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pipeline), args.Error(1)
}

func (m *MockPipelineRepo) Update(ctx context.Context, projectID uuid.UUID, pipeline *domain.Pipeline) error {
	args := m.Called(ctx, projectID, pipeline)
	return args.Error(0)
}

func (m *MockPipelineRepo) Delete(ctx context.Context, projectID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

func (m *MockPipelineRepo) List(ctx context.Context, filter output.PipelineListFilter) ([]*domain.Pipeline, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Pipeline), args.Int(1), args.Error(2)
}

// MockRunRepo is a mock of RunRepository.
type MockRunRepo struct {
	mock.Mock
}

func (m *MockRunRepo) Create(ctx context.Context, run *domain.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.PipelineRun, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineRun), args.Error(1)
}

func (m *MockRunRepo) Update(ctx context.Context, run *domain.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) List(ctx context.Context, filter output.RunListFilter) ([]*domain.PipelineRun, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.PipelineRun), args.Int(1), args.Error(2)
}

func (m *MockRunRepo) NextRunNumber(ctx context.Context, pipelineID uuid.UUID) (int, error) {
	args := m.Called(ctx, pipelineID)
	return args.Int(0), args.Error(1)
}

func (m *MockRunRepo) CreateStageRun(ctx context.Context, stageRun *domain.StageRun) error {
	args := m.Called(ctx, stageRun)
	return args.Error(0)
}

func (m *MockRunRepo) UpdateStageRun(ctx context.Context, stageRun *domain.StageRun) error {
	args := m.Called(ctx, stageRun)
	return args.Error(0)
}

func (m *MockRunRepo) CreateStepRun(ctx context.Context, stepRun *domain.StepRun) error {
	args := m.Called(ctx, stepRun)
	return args.Error(0)
}

func (m *MockRunRepo) UpdateStepRun(ctx context.Context, stepRun *domain.StepRun) error {
	args := m.Called(ctx, stepRun)
	return args.Error(0)
}

// MockEnvironmentRepo is a mock of EnvironmentRepository.
type MockEnvironmentRepo struct {
	mock.Mock
}

func (m *MockEnvironmentRepo) Create(ctx context.Context, env *domain.Environment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *MockEnvironmentRepo) GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Environment, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

func (m *MockEnvironmentRepo) GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.Environment, error) {
	args := m.Called(ctx, projectID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

func (m *MockEnvironmentRepo) GetByRank(ctx context.Context, projectID uuid.UUID, rank int) (*domain.Environment, error) {
	args := m.Called(ctx, projectID, rank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

func (m *MockEnvironmentRepo) Update(ctx context.Context, projectID uuid.UUID, env *domain.Environment) error {
	args := m.Called(ctx, projectID, env)
	return args.Error(0)
}

func (m *MockEnvironmentRepo) Delete(ctx context.Context, projectID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

func (m *MockEnvironmentRepo) List(ctx context.Context, projectID uuid.UUID) ([]*domain.Environment, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Environment), args.Error(1)
}

// MockArtifactRepo is a mock of ArtifactRepository.
type MockArtifactRepo struct {
	mock.Mock
}

func (m *MockArtifactRepo) Create(ctx context.Context, artifact *domain.Artifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockArtifactRepo) GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Artifact, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

func (m *MockArtifactRepo) GetByDigest(ctx context.Context, projectID uuid.UUID, digest string) (*domain.Artifact, error) {
	args := m.Called(ctx, projectID, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

func (m *MockArtifactRepo) GetByCommit(ctx context.Context, projectID, pipelineID uuid.UUID, commitSHA string) (*domain.Artifact, error) {
	args := m.Called(ctx, projectID, pipelineID, commitSHA)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

func (m *MockArtifactRepo) Update(ctx context.Context, projectID uuid.UUID, artifact *domain.Artifact) error {
	args := m.Called(ctx, projectID, artifact)
	return args.Error(0)
}

func (m *MockArtifactRepo) List(ctx context.Context, filter output.ArtifactListFilter) ([]*domain.Artifact, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Artifact), args.Int(1), args.Error(2)
}

// MockPromotionRepo is a mock of PromotionRepository.
type MockPromotionRepo struct {
	mock.Mock
}

func (m *MockPromotionRepo) Create(ctx context.Context, promotion *domain.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

func (m *MockPromotionRepo) GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Promotion, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepo) GetByArtifactAndEnv(ctx context.Context, projectID, artifactID, environmentID uuid.UUID) (*domain.Promotion, error) {
	args := m.Called(ctx, projectID, artifactID, environmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepo) Update(ctx context.Context, promotion *domain.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

func (m *MockPromotionRepo) List(ctx context.Context, filter output.PromotionListFilter) ([]*domain.Promotion, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Promotion), args.Int(1), args.Error(2)
}

func (m *MockPromotionRepo) ListPending(ctx context.Context, limit int) ([]*domain.Promotion, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepo) CountByEnvironment(ctx context.Context, projectID, environmentID uuid.UUID) (int, error) {
	args := m.Called(ctx, projectID, environmentID)
	return args.Int(0), args.Error(1)
}

// MockScanReportRepo is a mock of ScanReportRepository.
type MockScanReportRepo struct {
	mock.Mock
}

func (m *MockScanReportRepo) Create(ctx context.Context, report *domain.ScanReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockScanReportRepo) ListByRun(ctx context.Context, projectID, runID uuid.UUID) ([]*domain.ScanReport, error) {
	args := m.Called(ctx, projectID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScanReport), args.Error(1)
}
