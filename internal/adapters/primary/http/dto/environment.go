package dto

import (
	"time"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type CreateEnvironmentRequest struct {
	Name               string `json:"name" binding:"required,max=100"`
	Description        string `json:"description"`
	Rank               int    `json:"rank" binding:"required"`
	Namespace          string `json:"namespace"`
	ManifestPath       string `json:"manifest_path" binding:"required"`
	RequiresReleaseTag bool   `json:"requires_release_tag"`
}

type UpdateEnvironmentRequest struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	Rank               *int    `json:"rank"`
	Namespace          *string `json:"namespace"`
	ManifestPath       *string `json:"manifest_path"`
	RequiresReleaseTag *bool   `json:"requires_release_tag"`
	ExternalID         *string `json:"external_id"`
}

type EnvironmentResponse struct {
	ID                 uuid.UUID `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	ProjectID          uuid.UUID `json:"project_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Rank               int       `json:"rank"`
	Namespace          string    `json:"namespace"`
	ManifestPath       string    `json:"manifest_path"`
	RequiresReleaseTag bool      `json:"requires_release_tag"`
	ExternalID         string    `json:"external_id,omitempty"`
}

func ToEnvironmentResponse(env *domain.Environment) EnvironmentResponse {
	return EnvironmentResponse{
		ID:                 env.ID,
		CreatedAt:          env.CreatedAt,
		UpdatedAt:          env.UpdatedAt,
		ProjectID:          env.ProjectID,
		Name:               env.Name,
		Description:        env.Description,
		Rank:               env.Rank,
		Namespace:          env.Namespace,
		ManifestPath:       env.ManifestPath,
		RequiresReleaseTag: env.RequiresReleaseTag,
		ExternalID:         env.ExternalID,
	}
}
