package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Artifact is an immutable reference to a built container image: the image
// repository plus the digest, linked back to the git commit that produced it.
// The digest, not the tag, is what gets promoted between environments.
type Artifact struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ProjectID  uuid.UUID  `json:"project_id"`
	PipelineID uuid.UUID  `json:"pipeline_id"`
	RunID      *uuid.UUID `json:"run_id,omitempty"`
	ImageRepo  string     `json:"image_repo"`
	Tag        string     `json:"tag"`
	Digest     string     `json:"digest"`
	CommitSHA  string     `json:"commit_sha"`
	ReleaseTag string     `json:"release_tag,omitempty"`
	BuiltAt    time.Time  `json:"built_at"`
}

// NewArtifact creates a new Artifact with validation
func NewArtifact(projectID, pipelineID uuid.UUID, imageRepo, tag, commitSHA string) (*Artifact, error) {
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if pipelineID == uuid.Nil {
		return nil, ErrPipelineNotFound
	}
	if imageRepo == "" {
		return nil, ErrInvalidImageRepo
	}
	if commitSHA == "" {
		return nil, ErrInvalidCommitSHA
	}
	if tag == "" {
		tag = commitSHA
	}

	now := time.Now()
	return &Artifact{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		ProjectID:  projectID,
		PipelineID: pipelineID,
		ImageRepo:  imageRepo,
		Tag:        tag,
		CommitSHA:  commitSHA,
		BuiltAt:    now,
	}, nil
}

// SetDigest records the resolved image digest
func (a *Artifact) SetDigest(digest string) {
	a.Digest = digest
	a.UpdatedAt = time.Now()
}

// SetReleaseTag marks the artifact as released
func (a *Artifact) SetReleaseTag(tag string) {
	a.ReleaseTag = tag
	a.UpdatedAt = time.Now()
}

// SetRunID links the artifact to the run that built it
func (a *Artifact) SetRunID(runID uuid.UUID) {
	a.RunID = &runID
	a.UpdatedAt = time.Now()
}

// Reference returns the pinned image reference. With a digest it is
// repo@digest; without one it falls back to repo:tag.
func (a *Artifact) Reference() string {
	if a.Digest != "" {
		return fmt.Sprintf("%s@%s", a.ImageRepo, a.Digest)
	}
	return fmt.Sprintf("%s:%s", a.ImageRepo, a.Tag)
}

// PromotionStatus represents the state of a Promotion
type PromotionStatus string

const (
	PromotionStatusPending PromotionStatus = "PENDING"
	PromotionStatusSynced  PromotionStatus = "SYNCED"
	PromotionStatusFailed  PromotionStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s PromotionStatus) IsValid() bool {
	return s == PromotionStatusPending || s == PromotionStatusSynced || s == PromotionStatusFailed
}

// Promotion records the advance of an artifact into an environment: the
// manifest commit that pinned the digest, and whether the GitOps controller
// has reconciled it into the cluster.
type Promotion struct {
	ID                uuid.UUID       `json:"id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ProjectID         uuid.UUID       `json:"project_id"`
	ArtifactID        uuid.UUID       `json:"artifact_id"`
	EnvironmentID     uuid.UUID       `json:"environment_id"`
	Status            PromotionStatus `json:"status"`
	ManifestCommitSHA string          `json:"manifest_commit_sha,omitempty"`
	LastError         string          `json:"last_error,omitempty"`

	// Computed/joined fields
	EnvironmentName string `json:"environment_name,omitempty"`
	ArtifactDigest  string `json:"artifact_digest,omitempty"`
}

// NewPromotion creates a pending Promotion
func NewPromotion(projectID, artifactID, environmentID uuid.UUID) (*Promotion, error) {
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if artifactID == uuid.Nil {
		return nil, ErrArtifactNotFound
	}
	if environmentID == uuid.Nil {
		return nil, ErrEnvironmentNotFound
	}

	now := time.Now()
	return &Promotion{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		ProjectID:     projectID,
		ArtifactID:    artifactID,
		EnvironmentID: environmentID,
		Status:        PromotionStatusPending,
	}, nil
}

// SetManifestCommit records the config-repo commit that pinned the digest
func (p *Promotion) SetManifestCommit(sha string) {
	p.ManifestCommitSHA = sha
	p.UpdatedAt = time.Now()
}

// MarkSynced records that the cluster has reconciled the manifest commit
func (p *Promotion) MarkSynced() {
	p.Status = PromotionStatusSynced
	p.LastError = ""
	p.UpdatedAt = time.Now()
}

// MarkFailed records a sync or manifest-update failure
func (p *Promotion) MarkFailed(msg string) {
	p.Status = PromotionStatusFailed
	p.LastError = msg
	p.UpdatedAt = time.Now()
}
