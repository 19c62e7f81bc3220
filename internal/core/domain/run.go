package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the state of a PipelineRun
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusSucceeded, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the run can no longer change state.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSucceeded || s == RunStatusFailed || s == RunStatusCancelled
}

// StageStatus represents the state of a StageRun
type StageStatus string

const (
	StageStatusPending   StageStatus = "PENDING"
	StageStatusRunning   StageStatus = "RUNNING"
	StageStatusSucceeded StageStatus = "SUCCEEDED"
	StageStatusFailed    StageStatus = "FAILED"
	StageStatusSkipped   StageStatus = "SKIPPED"
)

// StepStatus represents the state of a StepRun
type StepStatus string

const (
	StepStatusPending   StepStatus = "PENDING"
	StepStatusRunning   StepStatus = "RUNNING"
	StepStatusSucceeded StepStatus = "SUCCEEDED"
	StepStatusFailed    StepStatus = "FAILED"
	StepStatusSkipped   StepStatus = "SKIPPED"
)

// TriggerEvent is the immutable snapshot of the source-control event that
// started a run.
type TriggerEvent struct {
	Kind       TriggerKind `json:"kind"`
	Repository string      `json:"repository"`
	Ref        string      `json:"ref"`
	CommitSHA  string      `json:"commit_sha"`
	ReleaseTag string      `json:"release_tag,omitempty"`
	Actor      string      `json:"actor,omitempty"`
}

// PipelineRun is one execution of a pipeline's stage graph.
type PipelineRun struct {
	ID         uuid.UUID    `json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	ProjectID  uuid.UUID    `json:"project_id"`
	PipelineID uuid.UUID    `json:"pipeline_id"`
	RunNumber  int          `json:"run_number"`
	Trigger    TriggerEvent `json:"trigger"`
	Status     RunStatus    `json:"status"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Error      string       `json:"error,omitempty"`

	// Computed/joined fields
	PipelineName string      `json:"pipeline_name,omitempty"`
	StageRuns    []*StageRun `json:"stage_runs,omitempty"`
}

// NewPipelineRun creates a new PipelineRun with validation
func NewPipelineRun(projectID, pipelineID uuid.UUID, runNumber int, trigger TriggerEvent) (*PipelineRun, error) {
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if pipelineID == uuid.Nil {
		return nil, ErrPipelineNotFound
	}
	if !trigger.Kind.IsValid() {
		return nil, ErrInvalidTriggerKind
	}
	if trigger.CommitSHA == "" {
		return nil, ErrMissingCommitSHA
	}

	now := time.Now()
	return &PipelineRun{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		ProjectID:  projectID,
		PipelineID: pipelineID,
		RunNumber:  runNumber,
		Trigger:    trigger,
		Status:     RunStatusPending,
	}, nil
}

// Start marks the run as running
func (r *PipelineRun) Start() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
	r.UpdatedAt = now
}

// MarkSucceeded marks the run as succeeded
func (r *PipelineRun) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// MarkFailed records the failure reason and finishes the run
func (r *PipelineRun) MarkFailed(msg string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.Error = msg
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// MarkCancelled finishes the run as cancelled
func (r *PipelineRun) MarkCancelled() {
	now := time.Now()
	r.Status = RunStatusCancelled
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// StageRun records the outcome of one stage within a run.
type StageRun struct {
	ID         uuid.UUID   `json:"id"`
	RunID      uuid.UUID   `json:"run_id"`
	StageName  string      `json:"stage_name"`
	Status     StageStatus `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`

	StepRuns []*StepRun `json:"step_runs,omitempty"`
}

// NewStageRun creates a pending StageRun for a stage of the run.
func NewStageRun(runID uuid.UUID, stageName string) *StageRun {
	return &StageRun{
		ID:        uuid.New(),
		RunID:     runID,
		StageName: stageName,
		Status:    StageStatusPending,
	}
}

// Start marks the stage run as running
func (s *StageRun) Start() {
	now := time.Now()
	s.Status = StageStatusRunning
	s.StartedAt = &now
}

// MarkSucceeded marks the stage run as succeeded
func (s *StageRun) MarkSucceeded() {
	now := time.Now()
	s.Status = StageStatusSucceeded
	s.FinishedAt = &now
}

// MarkFailed records why the stage failed
func (s *StageRun) MarkFailed(reason string) {
	now := time.Now()
	s.Status = StageStatusFailed
	s.Reason = reason
	s.FinishedAt = &now
}

// Skip records that the gate declined the stage
func (s *StageRun) Skip(reason string) {
	now := time.Now()
	s.Status = StageStatusSkipped
	s.Reason = reason
	s.FinishedAt = &now
}

// StepRun records one tool invocation within a stage run.
type StepRun struct {
	ID         uuid.UUID  `json:"id"`
	StageRunID uuid.UUID  `json:"stage_run_id"`
	Name       string     `json:"name"`
	Kind       StepKind   `json:"kind"`
	Status     StepStatus `json:"status"`
	ExitCode   int        `json:"exit_code"`
	Output     string     `json:"output,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewStepRun creates a running StepRun for a step.
func NewStepRun(stageRunID uuid.UUID, step Step) *StepRun {
	now := time.Now()
	return &StepRun{
		ID:         uuid.New(),
		StageRunID: stageRunID,
		Name:       step.Name,
		Kind:       step.Kind,
		Status:     StepStatusRunning,
		StartedAt:  &now,
	}
}

// Finish records the step outcome from the runner result.
func (s *StepRun) Finish(exitCode int, output string) {
	now := time.Now()
	s.ExitCode = exitCode
	s.Output = output
	s.FinishedAt = &now
	if exitCode == 0 {
		s.Status = StepStatusSucceeded
	} else {
		s.Status = StepStatusFailed
	}
}

// MarkFailed records a step that never produced an exit code.
func (s *StepRun) MarkFailed(output string) {
	now := time.Now()
	s.Status = StepStatusFailed
	s.ExitCode = -1
	s.Output = output
	s.FinishedAt = &now
}
