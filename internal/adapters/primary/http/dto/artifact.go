package dto

import (
	"time"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type RegisterArtifactRequest struct {
	PipelineID uuid.UUID  `json:"pipeline_id" binding:"required"`
	RunID      *uuid.UUID `json:"run_id"`
	ImageRepo  string     `json:"image_repo" binding:"required"`
	Tag        string     `json:"tag"`
	Digest     string     `json:"digest"`
	CommitSHA  string     `json:"commit_sha" binding:"required"`
	ReleaseTag string     `json:"release_tag"`
}

type TagArtifactRequest struct {
	ReleaseTag string `json:"release_tag" binding:"required"`
}

type ArtifactResponse struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ProjectID  uuid.UUID  `json:"project_id"`
	PipelineID uuid.UUID  `json:"pipeline_id"`
	RunID      *uuid.UUID `json:"run_id,omitempty"`
	ImageRepo  string     `json:"image_repo"`
	Tag        string     `json:"tag"`
	Digest     string     `json:"digest,omitempty"`
	CommitSHA  string     `json:"commit_sha"`
	ReleaseTag string     `json:"release_tag,omitempty"`
	Reference  string     `json:"reference"`
	BuiltAt    time.Time  `json:"built_at"`
}

type ListArtifactsResponse struct {
	Items      []ArtifactResponse `json:"items"`
	Total      int                `json:"total"`
	PageSize   int                `json:"page_size"`
	NextOffset int                `json:"next_offset"`
}

func ToArtifactResponse(a *domain.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:         a.ID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
		ProjectID:  a.ProjectID,
		PipelineID: a.PipelineID,
		RunID:      a.RunID,
		ImageRepo:  a.ImageRepo,
		Tag:        a.Tag,
		Digest:     a.Digest,
		CommitSHA:  a.CommitSHA,
		ReleaseTag: a.ReleaseTag,
		Reference:  a.Reference(),
		BuiltAt:    a.BuiltAt,
	}
}
