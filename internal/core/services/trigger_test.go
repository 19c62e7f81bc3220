package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
	"pipeline-orchestrator/internal/testutil"
)

type triggerFixture struct {
	pipelineRepo *testutil.MockPipelineRepo
	runs         *runFixture
	svc          *TriggerService
}

func newTriggerFixture() *triggerFixture {
	f := &triggerFixture{
		pipelineRepo: new(testutil.MockPipelineRepo),
		runs:         newRunFixture(),
	}
	f.svc = NewTriggerService(f.pipelineRepo, f.runs.svc)
	return f
}

// stubExecution satisfies the async execution the trigger kicks off.
func (f *triggerFixture) stubExecution() {
	f.runs.runRepo.On("NextRunNumber", mock.Anything, mock.Anything).Return(1, nil)
	f.runs.runRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PipelineRun")).Return(nil)
	f.runs.runRepo.On("CreateStageRun", mock.Anything, mock.AnythingOfType("*domain.StageRun")).Return(nil)
	f.runs.runRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.PipelineRun")).Return(nil)
	f.runs.runRepo.On("CreateStepRun", mock.Anything, mock.AnythingOfType("*domain.StepRun")).Return(nil)
	f.runs.runRepo.On("UpdateStepRun", mock.Anything, mock.AnythingOfType("*domain.StepRun")).Return(nil)
	f.runs.runRepo.On("UpdateStageRun", mock.Anything, mock.AnythingOfType("*domain.StageRun")).Return(nil)
	f.runs.runner.On("Run", mock.Anything, mock.AnythingOfType("domain.Step"), mock.Anything).
		Return(&output.StepResult{ExitCode: 0}, nil)
}

func TestHandleSourceEvent(t *testing.T) {
	f := newTriggerFixture()
	pipeline := testPipeline(t, stageOf("build"))
	f.stubExecution()
	f.pipelineRepo.On("GetByRepoURL", mock.Anything, pipeline.RepoURL).Return(pipeline, nil)

	run, err := f.svc.HandleSourceEvent(context.Background(), domain.TriggerEvent{
		Kind:       domain.TriggerPush,
		Repository: pipeline.RepoURL,
		Ref:        "refs/heads/main",
		CommitSHA:  "abc1234",
	})
	assert.NoError(t, err)
	assert.Equal(t, pipeline.ID, run.PipelineID)

	assert.NoError(t, f.runs.svc.Shutdown(context.Background()))
}

func TestHandleSourceEvent_Validation(t *testing.T) {
	f := newTriggerFixture()

	_, err := f.svc.HandleSourceEvent(context.Background(), domain.TriggerEvent{
		Kind: domain.TriggerPush, CommitSHA: "abc1234",
	})
	assert.ErrorIs(t, err, domain.ErrMissingRepository)

	_, err = f.svc.HandleSourceEvent(context.Background(), domain.TriggerEvent{
		Kind: domain.TriggerPush, Repository: "https://git.example.com/org/svc",
	})
	assert.ErrorIs(t, err, domain.ErrMissingCommitSHA)
}

func TestHandleSourceEvent_UnknownRepository(t *testing.T) {
	f := newTriggerFixture()
	f.pipelineRepo.On("GetByRepoURL", mock.Anything, "https://git.example.com/org/other").
		Return(nil, domain.ErrPipelineNotFound)

	_, err := f.svc.HandleSourceEvent(context.Background(), domain.TriggerEvent{
		Kind:       domain.TriggerPush,
		Repository: "https://git.example.com/org/other",
		CommitSHA:  "abc1234",
	})
	assert.ErrorIs(t, err, domain.ErrPipelineNotFound)
}

func TestTriggerManual_DefaultsRef(t *testing.T) {
	f := newTriggerFixture()
	pipeline := testPipeline(t, stageOf("build"))
	f.stubExecution()
	f.pipelineRepo.On("GetByID", mock.Anything, pipeline.ProjectID, pipeline.ID).Return(pipeline, nil)

	run, err := f.svc.TriggerManual(context.Background(), pipeline.ProjectID, pipeline.ID,
		"", "abc1234", "", "alice")
	assert.NoError(t, err)
	assert.Equal(t, domain.TriggerManual, run.Trigger.Kind)
	assert.Equal(t, "refs/heads/main", run.Trigger.Ref)
	assert.Equal(t, "alice", run.Trigger.Actor)

	assert.NoError(t, f.runs.svc.Shutdown(context.Background()))
}
