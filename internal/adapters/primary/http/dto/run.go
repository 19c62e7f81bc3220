package dto

import (
	"time"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type TriggerRunRequest struct {
	Ref        string `json:"ref"`
	CommitSHA  string `json:"commit_sha" binding:"required"`
	ReleaseTag string `json:"release_tag"`
	Actor      string `json:"actor"`
}

type TriggerEventDTO struct {
	Kind       string `json:"kind"`
	Repository string `json:"repository"`
	Ref        string `json:"ref"`
	CommitSHA  string `json:"commit_sha"`
	ReleaseTag string `json:"release_tag,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

type StepRunResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	ExitCode   int        `json:"exit_code"`
	Output     string     `json:"output,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type StageRunResponse struct {
	ID         uuid.UUID         `json:"id"`
	StageName  string            `json:"stage_name"`
	Status     string            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	StepRuns   []StepRunResponse `json:"step_runs,omitempty"`
}

type RunResponse struct {
	ID           uuid.UUID          `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	ProjectID    uuid.UUID          `json:"project_id"`
	PipelineID   uuid.UUID          `json:"pipeline_id"`
	PipelineName string             `json:"pipeline_name,omitempty"`
	RunNumber    int                `json:"run_number"`
	Trigger      TriggerEventDTO    `json:"trigger"`
	Status       string             `json:"status"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
	Error        string             `json:"error,omitempty"`
	StageRuns    []StageRunResponse `json:"stage_runs,omitempty"`
}

type ListRunsResponse struct {
	Items      []RunResponse `json:"items"`
	Total      int           `json:"total"`
	PageSize   int           `json:"page_size"`
	NextOffset int           `json:"next_offset"`
}

func ToRunResponse(r *domain.PipelineRun) RunResponse {
	resp := RunResponse{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ProjectID:    r.ProjectID,
		PipelineID:   r.PipelineID,
		PipelineName: r.PipelineName,
		RunNumber:    r.RunNumber,
		Trigger: TriggerEventDTO{
			Kind:       string(r.Trigger.Kind),
			Repository: r.Trigger.Repository,
			Ref:        r.Trigger.Ref,
			CommitSHA:  r.Trigger.CommitSHA,
			ReleaseTag: r.Trigger.ReleaseTag,
			Actor:      r.Trigger.Actor,
		},
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Error:      r.Error,
	}

	for _, sr := range r.StageRuns {
		stage := StageRunResponse{
			ID:         sr.ID,
			StageName:  sr.StageName,
			Status:     string(sr.Status),
			Reason:     sr.Reason,
			StartedAt:  sr.StartedAt,
			FinishedAt: sr.FinishedAt,
		}
		for _, step := range sr.StepRuns {
			stage.StepRuns = append(stage.StepRuns, StepRunResponse{
				ID:         step.ID,
				Name:       step.Name,
				Kind:       string(step.Kind),
				Status:     string(step.Status),
				ExitCode:   step.ExitCode,
				Output:     step.Output,
				StartedAt:  step.StartedAt,
				FinishedAt: step.FinishedAt,
			})
		}
		resp.StageRuns = append(resp.StageRuns, stage)
	}

	return resp
}
