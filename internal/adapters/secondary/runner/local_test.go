package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipeline-orchestrator/internal/core/domain"
)

func TestRun(t *testing.T) {
	r := NewLocalRunner(t.TempDir(), 0)

	result, err := r.Run(context.Background(), domain.Step{
		Name:    "echo",
		Kind:    domain.StepCommand,
		Command: []string{"/bin/sh", "-c", "echo hello"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output, "hello")
}

func TestRun_NonZeroExit(t *testing.T) {
	r := NewLocalRunner(t.TempDir(), 0)

	result, err := r.Run(context.Background(), domain.Step{
		Name:    "fail",
		Kind:    domain.StepCommand,
		Command: []string{"/bin/sh", "-c", "echo boom; exit 3"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Output, "boom")
}

func TestRun_EmptyCommand(t *testing.T) {
	r := NewLocalRunner(t.TempDir(), 0)

	_, err := r.Run(context.Background(), domain.Step{Name: "noop", Kind: domain.StepCommand}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStepCommand)
}

func TestRun_InjectsEnv(t *testing.T) {
	r := NewLocalRunner(t.TempDir(), 0)

	result, err := r.Run(context.Background(), domain.Step{
		Name:    "env",
		Kind:    domain.StepCommand,
		Command: []string{"/bin/sh", "-c", "echo $COMMIT_SHA"},
	}, map[string]string{"COMMIT_SHA": "abc1234"})
	assert.NoError(t, err)
	assert.Contains(t, result.Output, "abc1234")
}

func TestRun_Timeout(t *testing.T) {
	r := NewLocalRunner(t.TempDir(), 0)

	_, err := r.Run(context.Background(), domain.Step{
		Name:           "sleep",
		Kind:           domain.StepCommand,
		Command:        []string{"/bin/sh", "-c", "sleep 5"},
		TimeoutSeconds: 1,
	}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_TruncatesOutput(t *testing.T) {
	r := NewLocalRunner(t.TempDir(), 16)

	result, err := r.Run(context.Background(), domain.Step{
		Name:    "yes",
		Kind:    domain.StepCommand,
		Command: []string{"/bin/sh", "-c", "printf 'aaaaaaaaaaaaaaaaaaaaaaaaaaaaaatail'"},
	}, nil)
	assert.NoError(t, err)
	assert.Len(t, result.Output, 16)
	assert.Contains(t, result.Output, "tail")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", tail([]byte("abc"), 10))
	assert.Equal(t, "abc", tail([]byte("abc"), 0))
	assert.Equal(t, "bc", tail([]byte("abc"), 2))
}
