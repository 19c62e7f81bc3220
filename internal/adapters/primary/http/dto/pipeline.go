package dto

import (
	"time"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type StepDTO struct {
	Name           string   `json:"name" binding:"required"`
	Kind           string   `json:"kind" binding:"required"`
	Command        []string `json:"command" binding:"required"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type StageDTO struct {
	Name            string    `json:"name" binding:"required"`
	Trigger         string    `json:"trigger" binding:"required"`
	Needs           []string  `json:"needs"`
	Steps           []StepDTO `json:"steps" binding:"required"`
	TargetEnv       string    `json:"target_env"`
	MaxScanSeverity string    `json:"max_scan_severity"`
}

type CreatePipelineRequest struct {
	Name          string            `json:"name" binding:"required,max=100"`
	Description   string            `json:"description"`
	RepoURL       string            `json:"repo_url" binding:"required"`
	DefaultBranch string            `json:"default_branch"`
	Stages        []StageDTO        `json:"stages" binding:"required"`
	Labels        map[string]string `json:"labels"`
}

type UpdatePipelineRequest struct {
	Name          *string           `json:"name"`
	Description   *string           `json:"description"`
	DefaultBranch *string           `json:"default_branch"`
	Stages        []StageDTO        `json:"stages"`
	Labels        map[string]string `json:"labels"`
}

type PipelineResponse struct {
	ID            uuid.UUID         `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ProjectID     uuid.UUID         `json:"project_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	RepoURL       string            `json:"repo_url"`
	DefaultBranch string            `json:"default_branch"`
	Stages        []StageDTO        `json:"stages"`
	Labels        map[string]string `json:"labels"`
}

type ListPipelinesResponse struct {
	Items      []PipelineResponse `json:"items"`
	Total      int                `json:"total"`
	PageSize   int                `json:"page_size"`
	NextOffset int                `json:"next_offset"`
}

// ToDomainStages converts the wire stage list into domain stages. Validation
// happens in the domain layer.
func ToDomainStages(stages []StageDTO) []domain.Stage {
	if stages == nil {
		return nil
	}
	out := make([]domain.Stage, 0, len(stages))
	for _, st := range stages {
		steps := make([]domain.Step, 0, len(st.Steps))
		for _, sp := range st.Steps {
			steps = append(steps, domain.Step{
				Name:           sp.Name,
				Kind:           domain.StepKind(sp.Kind),
				Command:        sp.Command,
				TimeoutSeconds: sp.TimeoutSeconds,
			})
		}
		out = append(out, domain.Stage{
			Name:            st.Name,
			Trigger:         domain.TriggerKind(st.Trigger),
			Needs:           st.Needs,
			Steps:           steps,
			TargetEnv:       st.TargetEnv,
			MaxScanSeverity: domain.Severity(st.MaxScanSeverity),
		})
	}
	return out
}

func toStageDTOs(stages []domain.Stage) []StageDTO {
	out := make([]StageDTO, 0, len(stages))
	for _, st := range stages {
		steps := make([]StepDTO, 0, len(st.Steps))
		for _, sp := range st.Steps {
			steps = append(steps, StepDTO{
				Name:           sp.Name,
				Kind:           string(sp.Kind),
				Command:        sp.Command,
				TimeoutSeconds: sp.TimeoutSeconds,
			})
		}
		out = append(out, StageDTO{
			Name:            st.Name,
			Trigger:         string(st.Trigger),
			Needs:           st.Needs,
			Steps:           steps,
			TargetEnv:       st.TargetEnv,
			MaxScanSeverity: string(st.MaxScanSeverity),
		})
	}
	return out
}

func ToPipelineResponse(p *domain.Pipeline) PipelineResponse {
	labels := p.Labels
	if labels == nil {
		labels = make(map[string]string)
	}
	return PipelineResponse{
		ID:            p.ID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		ProjectID:     p.ProjectID,
		Name:          p.Name,
		Description:   p.Description,
		RepoURL:       p.RepoURL,
		DefaultBranch: p.DefaultBranch,
		Stages:        toStageDTOs(p.Stages),
		Labels:        labels,
	}
}
