package ports

import (
	"context"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type PipelineListFilter struct {
	ProjectID uuid.UUID
	Search    string
	SortBy    string
	Order     string
	Limit     int
	Offset    int
}

type RunListFilter struct {
	ProjectID  uuid.UUID
	PipelineID *uuid.UUID
	Status     string
	Limit      int
	Offset     int
}

type ArtifactListFilter struct {
	ProjectID  uuid.UUID
	PipelineID *uuid.UUID
	Tag        string
	CommitSHA  string
	Limit      int
	Offset     int
}

type PromotionListFilter struct {
	ProjectID     uuid.UUID
	ArtifactID    *uuid.UUID
	EnvironmentID *uuid.UUID
	Status        string
	Limit         int
	Offset        int
}

type PipelineRepository interface {
	Create(ctx context.Context, pipeline *domain.Pipeline) error
	GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Pipeline, error)
	// GetByRepoURL resolves the pipeline registered for a source repository.
	// Webhook lookup has no Project-ID header, so this crosses projects.
	GetByRepoURL(ctx context.Context, repoURL string) (*domain.Pipeline, error)
	Update(ctx context.Context, projectID uuid.UUID, pipeline *domain.Pipeline) error
	Delete(ctx context.Context, projectID uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, filter PipelineListFilter) ([]*domain.Pipeline, int, error)
}

type RunRepository interface {
	Create(ctx context.Context, run *domain.PipelineRun) error
	GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.PipelineRun, error)
	Update(ctx context.Context, run *domain.PipelineRun) error
	List(ctx context.Context, filter RunListFilter) ([]*domain.PipelineRun, int, error)
	NextRunNumber(ctx context.Context, pipelineID uuid.UUID) (int, error)

	CreateStageRun(ctx context.Context, stageRun *domain.StageRun) error
	UpdateStageRun(ctx context.Context, stageRun *domain.StageRun) error
	CreateStepRun(ctx context.Context, stepRun *domain.StepRun) error
	UpdateStepRun(ctx context.Context, stepRun *domain.StepRun) error
}

type EnvironmentRepository interface {
	Create(ctx context.Context, env *domain.Environment) error
	GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Environment, error)
	GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.Environment, error)
	GetByRank(ctx context.Context, projectID uuid.UUID, rank int) (*domain.Environment, error)
	Update(ctx context.Context, projectID uuid.UUID, env *domain.Environment) error
	Delete(ctx context.Context, projectID uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, projectID uuid.UUID) ([]*domain.Environment, error)
}

type ArtifactRepository interface {
	Create(ctx context.Context, artifact *domain.Artifact) error
	GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Artifact, error)
	GetByDigest(ctx context.Context, projectID uuid.UUID, digest string) (*domain.Artifact, error)
	// GetByCommit returns the most recently built artifact for a commit.
	GetByCommit(ctx context.Context, projectID, pipelineID uuid.UUID, commitSHA string) (*domain.Artifact, error)
	Update(ctx context.Context, projectID uuid.UUID, artifact *domain.Artifact) error
	List(ctx context.Context, filter ArtifactListFilter) ([]*domain.Artifact, int, error)
}

type PromotionRepository interface {
	Create(ctx context.Context, promotion *domain.Promotion) error
	GetByID(ctx context.Context, projectID uuid.UUID, id uuid.UUID) (*domain.Promotion, error)
	GetByArtifactAndEnv(ctx context.Context, projectID, artifactID, environmentID uuid.UUID) (*domain.Promotion, error)
	Update(ctx context.Context, promotion *domain.Promotion) error
	List(ctx context.Context, filter PromotionListFilter) ([]*domain.Promotion, int, error)
	// ListPending feeds the background sync poller; it crosses projects.
	ListPending(ctx context.Context, limit int) ([]*domain.Promotion, error)
	CountByEnvironment(ctx context.Context, projectID, environmentID uuid.UUID) (int, error)
}

type ScanReportRepository interface {
	Create(ctx context.Context, report *domain.ScanReport) error
	ListByRun(ctx context.Context, projectID, runID uuid.UUID) ([]*domain.ScanReport, error)
}
