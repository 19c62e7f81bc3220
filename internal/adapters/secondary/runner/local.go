package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// localRunner executes step commands as local subprocesses.
type localRunner struct {
	workDir        string
	maxOutputBytes int
}

// NewLocalRunner creates a StepRunner that shells out on the orchestrator host.
func NewLocalRunner(workDir string, maxOutputBytes int) output.StepRunner {
	return &localRunner{
		workDir:        workDir,
		maxOutputBytes: maxOutputBytes,
	}
}

var _ output.StepRunner = (*localRunner)(nil)

func (r *localRunner) Run(ctx context.Context, step domain.Step, env map[string]string) (*output.StepResult, error) {
	if len(step.Command) == 0 {
		return nil, domain.ErrInvalidStepCommand
	}

	runCtx := ctx
	if step.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, step.Command[0], step.Command[1:]...)
	cmd.Dir = r.workDir
	cmd.Env = mergeEnv(os.Environ(), env)

	log.WithFields(log.Fields{
		"step":    step.Name,
		"kind":    step.Kind,
		"command": step.Command[0],
	}).Debug("Running step command")

	raw, err := cmd.CombinedOutput()
	combined := tail(raw, r.maxOutputBytes)

	if err != nil {
		// A context kill also surfaces as an ExitError, so check the
		// context first.
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, runCtx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &output.StepResult{ExitCode: exitErr.ExitCode(), Output: combined}, nil
		}
		return nil, fmt.Errorf("run step %q: %w", step.Name, err)
	}

	return &output.StepResult{ExitCode: 0, Output: combined}, nil
}

func mergeEnv(base []string, extra map[string]string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	merged = append(merged, base...)
	for k, v := range extra {
		merged = append(merged, k+"="+v)
	}
	return merged
}

// tail keeps the last max bytes of the output, where failures usually surface.
func tail(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	return string(b[len(b)-max:])
}
