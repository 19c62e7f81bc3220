package domain

import (
	"time"

	"github.com/google/uuid"
)

// Canonical environment names used by the delivery workflow. Rank ordering is
// what actually drives promotion; the names are conventions.
const (
	EnvDevelopment = "development"
	EnvPreProd     = "preprod"
	EnvProduction  = "production"
)

// Environment is a deployment target that artifacts are promoted into, in
// rank order. Rank 1 is the first environment after a build; production sits
// at the highest rank and additionally requires a release-tagged artifact.
type Environment struct {
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
	ExternalID         string    `json:"external_id"` // GitOps Kustomization name if different
}

// NewEnvironment creates a new Environment with validation
func NewEnvironment(projectID uuid.UUID, name, description string, rank int, namespace, manifestPath string, requiresReleaseTag bool) (*Environment, error) {
	if name == "" {
		return nil, ErrInvalidEnvironmentName
	}
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if rank < 1 {
		return nil, ErrInvalidEnvironmentRank
	}
	if manifestPath == "" {
		return nil, ErrInvalidManifestPath
	}
	if namespace == "" {
		namespace = name
	}

	now := time.Now()
	return &Environment{
		ID:                 uuid.New(),
		CreatedAt:          now,
		UpdatedAt:          now,
		ProjectID:          projectID,
		Name:               name,
		Description:        description,
		Rank:               rank,
		Namespace:          namespace,
		ManifestPath:       manifestPath,
		RequiresReleaseTag: requiresReleaseTag,
	}, nil
}

// Update updates the environment fields
func (e *Environment) Update(name, description, namespace, manifestPath, externalID *string, rank *int, requiresReleaseTag *bool) error {
	if name != nil {
		if *name == "" {
			return ErrInvalidEnvironmentName
		}
		e.Name = *name
	}
	if description != nil {
		e.Description = *description
	}
	if namespace != nil && *namespace != "" {
		e.Namespace = *namespace
	}
	if manifestPath != nil {
		if *manifestPath == "" {
			return ErrInvalidManifestPath
		}
		e.ManifestPath = *manifestPath
	}
	if externalID != nil {
		e.ExternalID = *externalID
	}
	if rank != nil {
		if *rank < 1 {
			return ErrInvalidEnvironmentRank
		}
		e.Rank = *rank
	}
	if requiresReleaseTag != nil {
		e.RequiresReleaseTag = *requiresReleaseTag
	}
	e.UpdatedAt = time.Now()
	return nil
}

// KustomizationName is the GitOps controller object reconciling this
// environment.
func (e *Environment) KustomizationName() string {
	if e.ExternalID != "" {
		return e.ExternalID
	}
	return e.Name
}
