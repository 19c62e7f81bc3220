package ports

import (
	"context"

	"pipeline-orchestrator/internal/core/domain"
)

// StepResult is the outcome of one tool invocation.
type StepResult struct {
	ExitCode int
	Output   string
}

// StepRunner executes a step's command. A non-zero exit code is reported in
// the result, not as an error; errors mean the command could not be run at
// all. The env map is merged over the process environment.
type StepRunner interface {
	Run(ctx context.Context, step domain.Step, env map[string]string) (*StepResult, error)
}
