package services

import (
	"context"
	"fmt"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// GateOutcome is the gate evaluator's verdict for a stage.
type GateOutcome string

const (
	// GateAllow lets the stage run.
	GateAllow GateOutcome = "ALLOW"
	// GateSkip declines the stage without failing the run (trigger mismatch,
	// unmet dependency, missing release tag).
	GateSkip GateOutcome = "SKIP"
	// GateBlock fails the stage: a required check did not pass.
	GateBlock GateOutcome = "BLOCK"
)

// GateDecision carries the verdict plus a human-readable reason recorded on
// the stage run.
type GateDecision struct {
	Outcome GateOutcome
	Reason  string
}

// GateEvaluator decides whether a stage's preconditions are satisfied within
// a run. It is a pure decision component: it never mutates run state.
type GateEvaluator struct {
	envRepo  output.EnvironmentRepository
	scanRepo output.ScanReportRepository
}

// NewGateEvaluator creates a new GateEvaluator
func NewGateEvaluator(envRepo output.EnvironmentRepository, scanRepo output.ScanReportRepository) *GateEvaluator {
	return &GateEvaluator{envRepo: envRepo, scanRepo: scanRepo}
}

// Evaluate applies the gating rules in order: trigger match, dependency
// success, release-tag requirement of the target environment, then the
// stage's scan-severity gate.
func (g *GateEvaluator) Evaluate(
	ctx context.Context,
	run *domain.PipelineRun,
	stage *domain.Stage,
	stageRuns map[string]*domain.StageRun,
) (GateDecision, error) {
	if !stage.Trigger.Matches(run.Trigger.Kind) {
		return GateDecision{
			Outcome: GateSkip,
			Reason:  fmt.Sprintf("stage triggers on %s, run was triggered by %s", stage.Trigger, run.Trigger.Kind),
		}, nil
	}

	for _, need := range stage.Needs {
		dep, ok := stageRuns[need]
		if !ok {
			return GateDecision{}, domain.ErrStageRunNotFound
		}
		switch dep.Status {
		case domain.StageStatusSucceeded:
		case domain.StageStatusSkipped:
			return GateDecision{
				Outcome: GateSkip,
				Reason:  fmt.Sprintf("dependency %q was skipped", need),
			}, nil
		default:
			return GateDecision{
				Outcome: GateSkip,
				Reason:  fmt.Sprintf("dependency %q did not succeed", need),
			}, nil
		}
	}

	if stage.TargetEnv != "" {
		env, err := g.envRepo.GetByName(ctx, run.ProjectID, stage.TargetEnv)
		if err != nil {
			return GateDecision{}, fmt.Errorf("get target environment: %w", err)
		}
		if env.RequiresReleaseTag && run.Trigger.ReleaseTag == "" {
			return GateDecision{
				Outcome: GateSkip,
				Reason:  fmt.Sprintf("environment %q requires a release tag", env.Name),
			}, nil
		}
	}

	if stage.MaxScanSeverity != "" {
		if !stage.MaxScanSeverity.IsValid() {
			return GateDecision{}, domain.ErrInvalidSeverity
		}
		reports, err := g.scanRepo.ListByRun(ctx, run.ProjectID, run.ID)
		if err != nil {
			return GateDecision{}, fmt.Errorf("list scan reports: %w", err)
		}
		for _, report := range reports {
			if report.HasFindingsAtOrAbove(stage.MaxScanSeverity) {
				return GateDecision{
					Outcome: GateBlock,
					Reason: fmt.Sprintf("%s reported %s findings at or above %s",
						report.Scanner, report.Highest, stage.MaxScanSeverity),
				}, nil
			}
		}
	}

	return GateDecision{Outcome: GateAllow}, nil
}
