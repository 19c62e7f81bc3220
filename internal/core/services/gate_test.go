package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	"pipeline-orchestrator/internal/testutil"
)

func gateFixture() (*testutil.MockEnvironmentRepo, *testutil.MockScanReportRepo, *GateEvaluator) {
	envRepo := new(testutil.MockEnvironmentRepo)
	scanRepo := new(testutil.MockScanReportRepo)
	return envRepo, scanRepo, NewGateEvaluator(envRepo, scanRepo)
}

func testRun(kind domain.TriggerKind, releaseTag string) *domain.PipelineRun {
	return &domain.PipelineRun{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Trigger: domain.TriggerEvent{
			Kind:       kind,
			CommitSHA:  "abc1234",
			ReleaseTag: releaseTag,
		},
	}
}

func TestGate_TriggerMismatch(t *testing.T) {
	_, _, gate := gateFixture()

	run := testRun(domain.TriggerPullRequest, "")
	stage := &domain.Stage{Name: "release", Trigger: domain.TriggerTag}

	decision, err := gate.Evaluate(context.Background(), run, stage, nil)
	assert.NoError(t, err)
	assert.Equal(t, GateSkip, decision.Outcome)
	assert.Contains(t, decision.Reason, "triggered by pull_request")
}

func TestGate_ManualRunMatchesEverything(t *testing.T) {
	_, _, gate := gateFixture()

	run := testRun(domain.TriggerManual, "")
	stage := &domain.Stage{Name: "release", Trigger: domain.TriggerTag}

	decision, err := gate.Evaluate(context.Background(), run, stage, nil)
	assert.NoError(t, err)
	assert.Equal(t, GateAllow, decision.Outcome)
}

func TestGate_DependencyNotSucceeded(t *testing.T) {
	_, _, gate := gateFixture()

	run := testRun(domain.TriggerPush, "")
	stage := &domain.Stage{Name: "deploy", Trigger: domain.TriggerPush, Needs: []string{"build"}}
	stageRuns := map[string]*domain.StageRun{
		"build": {StageName: "build", Status: domain.StageStatusFailed},
	}

	decision, err := gate.Evaluate(context.Background(), run, stage, stageRuns)
	assert.NoError(t, err)
	assert.Equal(t, GateSkip, decision.Outcome)
	assert.Contains(t, decision.Reason, `dependency "build" did not succeed`)
}

func TestGate_DependencySkipped(t *testing.T) {
	_, _, gate := gateFixture()

	run := testRun(domain.TriggerPush, "")
	stage := &domain.Stage{Name: "deploy", Trigger: domain.TriggerPush, Needs: []string{"scan"}}
	stageRuns := map[string]*domain.StageRun{
		"scan": {StageName: "scan", Status: domain.StageStatusSkipped},
	}

	decision, err := gate.Evaluate(context.Background(), run, stage, stageRuns)
	assert.NoError(t, err)
	assert.Equal(t, GateSkip, decision.Outcome)
	assert.Contains(t, decision.Reason, `dependency "scan" was skipped`)
}

func TestGate_ReleaseTagRequired(t *testing.T) {
	envRepo, _, gate := gateFixture()

	run := testRun(domain.TriggerTag, "")
	stage := &domain.Stage{Name: "release", Trigger: domain.TriggerTag, TargetEnv: domain.EnvProduction}

	envRepo.On("GetByName", mock.Anything, run.ProjectID, domain.EnvProduction).
		Return(&domain.Environment{Name: domain.EnvProduction, Rank: 3, RequiresReleaseTag: true}, nil)

	decision, err := gate.Evaluate(context.Background(), run, stage, nil)
	assert.NoError(t, err)
	assert.Equal(t, GateSkip, decision.Outcome)
	assert.Contains(t, decision.Reason, "requires a release tag")
}

func TestGate_SeverityBreachBlocks(t *testing.T) {
	_, scanRepo, gate := gateFixture()

	run := testRun(domain.TriggerPush, "")
	stage := &domain.Stage{Name: "deploy", Trigger: domain.TriggerPush, MaxScanSeverity: domain.SeverityHigh}

	scanRepo.On("ListByRun", mock.Anything, run.ProjectID, run.ID).Return([]*domain.ScanReport{
		{
			Scanner:  domain.ScannerImageScan,
			Findings: map[domain.Severity]int{domain.SeverityCritical: 1},
			Highest:  domain.SeverityCritical,
		},
	}, nil)

	decision, err := gate.Evaluate(context.Background(), run, stage, nil)
	assert.NoError(t, err)
	assert.Equal(t, GateBlock, decision.Outcome)
	assert.Contains(t, decision.Reason, "image_scan")
}

func TestGate_SeverityBelowThresholdAllows(t *testing.T) {
	_, scanRepo, gate := gateFixture()

	run := testRun(domain.TriggerPush, "")
	stage := &domain.Stage{Name: "deploy", Trigger: domain.TriggerPush, MaxScanSeverity: domain.SeverityHigh}

	scanRepo.On("ListByRun", mock.Anything, run.ProjectID, run.ID).Return([]*domain.ScanReport{
		{
			Scanner:  domain.ScannerDependencyScan,
			Findings: map[domain.Severity]int{domain.SeverityMedium: 7},
			Highest:  domain.SeverityMedium,
		},
	}, nil)

	decision, err := gate.Evaluate(context.Background(), run, stage, nil)
	assert.NoError(t, err)
	assert.Equal(t, GateAllow, decision.Outcome)
}
