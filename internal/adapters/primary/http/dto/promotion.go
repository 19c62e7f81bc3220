package dto

import (
	"time"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type PromoteRequest struct {
	ArtifactID    uuid.UUID `json:"artifact_id" binding:"required"`
	EnvironmentID uuid.UUID `json:"environment_id" binding:"required"`
}

type PromotionResponse struct {
	ID                uuid.UUID `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	ProjectID         uuid.UUID `json:"project_id"`
	ArtifactID        uuid.UUID `json:"artifact_id"`
	ArtifactDigest    string    `json:"artifact_digest,omitempty"`
	EnvironmentID     uuid.UUID `json:"environment_id"`
	EnvironmentName   string    `json:"environment_name,omitempty"`
	Status            string    `json:"status"`
	ManifestCommitSHA string    `json:"manifest_commit_sha,omitempty"`
	LastError         string    `json:"last_error,omitempty"`
}

type ListPromotionsResponse struct {
	Items      []PromotionResponse `json:"items"`
	Total      int                 `json:"total"`
	PageSize   int                 `json:"page_size"`
	NextOffset int                 `json:"next_offset"`
}

func ToPromotionResponse(p *domain.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:                p.ID,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		ProjectID:         p.ProjectID,
		ArtifactID:        p.ArtifactID,
		ArtifactDigest:    p.ArtifactDigest,
		EnvironmentID:     p.EnvironmentID,
		EnvironmentName:   p.EnvironmentName,
		Status:            string(p.Status),
		ManifestCommitSHA: p.ManifestCommitSHA,
		LastError:         p.LastError,
	}
}
