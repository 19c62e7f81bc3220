package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// RunService drives pipeline runs: it creates them from trigger events and
// executes the stage graph level by level, evaluating gates and running steps
// until the run reaches a terminal state.
type RunService struct {
	runRepo  output.RunRepository
	gate     *GateEvaluator
	runner   output.StepRunner
	scans    *ScanService
	promoter *PromotionService

	rootCtx    context.Context
	rootCancel context.CancelFunc
	mu         sync.Mutex
	cancels    map[uuid.UUID]context.CancelFunc
	wg         sync.WaitGroup
}

// NewRunService creates a new RunService
func NewRunService(
	runRepo output.RunRepository,
	gate *GateEvaluator,
	runner output.StepRunner,
	scans *ScanService,
	promoter *PromotionService,
) *RunService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunService{
		runRepo:    runRepo,
		gate:       gate,
		runner:     runner,
		scans:      scans,
		promoter:   promoter,
		rootCtx:    ctx,
		rootCancel: cancel,
		cancels:    make(map[uuid.UUID]context.CancelFunc),
	}
}

// Trigger creates a pending run for the pipeline with one pending stage run
// per stage. Execution is started separately.
func (s *RunService) Trigger(ctx context.Context, pipeline *domain.Pipeline, event domain.TriggerEvent) (*domain.PipelineRun, error) {
	number, err := s.runRepo.NextRunNumber(ctx, pipeline.ID)
	if err != nil {
		return nil, fmt.Errorf("next run number: %w", err)
	}

	run, err := domain.NewPipelineRun(pipeline.ProjectID, pipeline.ID, number, event)
	if err != nil {
		return nil, err
	}
	run.PipelineName = pipeline.Name

	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	for _, stage := range pipeline.Stages {
		sr := domain.NewStageRun(run.ID, stage.Name)
		if err := s.runRepo.CreateStageRun(ctx, sr); err != nil {
			return nil, fmt.Errorf("create stage run: %w", err)
		}
		run.StageRuns = append(run.StageRuns, sr)
	}
	return run, nil
}

// StartAsync executes the run on a tracked goroutine. The goroutine is
// cancelled by Cancel or Shutdown.
func (s *RunService) StartAsync(pipeline *domain.Pipeline, run *domain.PipelineRun) {
	ctx, cancel := context.WithCancel(s.rootCtx)
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			cancel()
			s.mu.Lock()
			delete(s.cancels, run.ID)
			s.mu.Unlock()
		}()
		if err := s.Execute(ctx, pipeline, run); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"run_id":   run.ID,
				"pipeline": pipeline.Name,
			}).Error("run execution aborted")
		}
	}()
}

// Execute walks the stage graph level by level. Stages within a level run
// concurrently; a stage failure is recorded and dependents are skipped by
// their gates, while infrastructure errors abort the run.
func (s *RunService) Execute(ctx context.Context, pipeline *domain.Pipeline, run *domain.PipelineRun) error {
	levels, err := pipeline.ExecutionLevels()
	if err != nil {
		run.MarkFailed(err.Error())
		return s.updateRun(ctx, run)
	}

	stageRuns := make(map[string]*domain.StageRun, len(run.StageRuns))
	for _, sr := range run.StageRuns {
		stageRuns[sr.StageName] = sr
	}

	run.Start()
	if err := s.updateRun(ctx, run); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"run_id":   run.ID,
		"pipeline": pipeline.Name,
		"number":   run.RunNumber,
		"trigger":  run.Trigger.Kind,
	}).Info("run started")

	for _, level := range levels {
		if ctx.Err() != nil {
			break
		}
		eg, egCtx := errgroup.WithContext(ctx)
		for _, name := range level {
			stage, ok := pipeline.Stage(name)
			if !ok {
				continue
			}
			sr, ok := stageRuns[name]
			if !ok {
				return domain.ErrStageRunNotFound
			}
			eg.Go(func() error {
				return s.executeStage(egCtx, run, stage, sr, stageRuns)
			})
		}
		if err := eg.Wait(); err != nil {
			run.MarkFailed(err.Error())
			_ = s.updateRun(context.WithoutCancel(ctx), run)
			return err
		}
	}

	if ctx.Err() != nil {
		run.MarkCancelled()
		return s.updateRun(context.WithoutCancel(ctx), run)
	}

	failed := ""
	for _, sr := range run.StageRuns {
		if sr.Status == domain.StageStatusFailed {
			failed = sr.StageName
			break
		}
	}
	if failed != "" {
		run.MarkFailed(fmt.Sprintf("stage %q failed", failed))
	} else {
		run.MarkSucceeded()
	}
	if err := s.updateRun(ctx, run); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"run_id": run.ID,
		"status": run.Status,
	}).Info("run finished")
	return nil
}

// executeStage gates the stage, then runs its steps strictly in order,
// stopping at the first failure. Stage failures return nil so sibling stages
// in the same level keep going; only infrastructure errors propagate.
func (s *RunService) executeStage(
	ctx context.Context,
	run *domain.PipelineRun,
	stage *domain.Stage,
	sr *domain.StageRun,
	stageRuns map[string]*domain.StageRun,
) error {
	decision, err := s.gate.Evaluate(ctx, run, stage, stageRuns)
	if err != nil {
		sr.MarkFailed(fmt.Sprintf("gate evaluation: %v", err))
		_ = s.runRepo.UpdateStageRun(context.WithoutCancel(ctx), sr)
		return err
	}

	switch decision.Outcome {
	case GateSkip:
		sr.Skip(decision.Reason)
		return s.runRepo.UpdateStageRun(ctx, sr)
	case GateBlock:
		sr.MarkFailed(decision.Reason)
		return s.runRepo.UpdateStageRun(ctx, sr)
	}

	sr.Start()
	if err := s.runRepo.UpdateStageRun(ctx, sr); err != nil {
		return err
	}

	env := map[string]string{
		"PIPELINE_STAGE": stage.Name,
		"REPOSITORY":     run.Trigger.Repository,
		"GIT_REF":        run.Trigger.Ref,
		"COMMIT_SHA":     run.Trigger.CommitSHA,
		"RELEASE_TAG":    run.Trigger.ReleaseTag,
	}

	for _, step := range stage.Steps {
		stepRun := domain.NewStepRun(sr.ID, step)
		if err := s.runRepo.CreateStepRun(ctx, stepRun); err != nil {
			return err
		}
		sr.StepRuns = append(sr.StepRuns, stepRun)

		result, err := s.runner.Run(ctx, step, env)
		if err != nil {
			stepRun.MarkFailed(err.Error())
			_ = s.runRepo.UpdateStepRun(context.WithoutCancel(ctx), stepRun)
			sr.MarkFailed(fmt.Sprintf("step %q: %v", step.Name, err))
			return s.runRepo.UpdateStageRun(context.WithoutCancel(ctx), sr)
		}

		stepRun.Finish(result.ExitCode, result.Output)
		if err := s.runRepo.UpdateStepRun(ctx, stepRun); err != nil {
			return err
		}

		if step.Kind.IsScan() {
			if _, serr := s.scans.RecordStepReport(ctx, run, stage.Name, step, result.Output); serr != nil {
				if errors.Is(serr, domain.ErrScanSummaryMissing) {
					log.WithFields(log.Fields{
						"run_id": run.ID,
						"step":   step.Name,
					}).Warn("scan step emitted no findings summary")
				} else {
					log.WithError(serr).WithField("step", step.Name).Error("record scan report")
				}
			}
		}

		if result.ExitCode != 0 {
			sr.MarkFailed(fmt.Sprintf("step %q exited with code %d", step.Name, result.ExitCode))
			return s.runRepo.UpdateStageRun(ctx, sr)
		}
	}

	if stage.TargetEnv != "" && s.promoter != nil {
		promo, err := s.promoter.PromoteForStage(ctx, run, stage)
		if err != nil {
			sr.MarkFailed(fmt.Sprintf("promotion: %v", err))
			return s.runRepo.UpdateStageRun(ctx, sr)
		}
		if promo.Status == domain.PromotionStatusFailed {
			sr.MarkFailed(fmt.Sprintf("promotion: %s", promo.LastError))
			return s.runRepo.UpdateStageRun(ctx, sr)
		}
	}

	sr.MarkSucceeded()
	return s.runRepo.UpdateStageRun(ctx, sr)
}

// Get returns a run with its stage and step runs.
func (s *RunService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.PipelineRun, error) {
	return s.runRepo.GetByID(ctx, projectID, id)
}

// List returns runs matching the filter.
func (s *RunService) List(ctx context.Context, filter output.RunListFilter) ([]*domain.PipelineRun, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.runRepo.List(ctx, filter)
}

// Cancel stops a pending or running run.
func (s *RunService) Cancel(ctx context.Context, projectID, id uuid.UUID) (*domain.PipelineRun, error) {
	run, err := s.runRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunStatusPending && run.Status != domain.RunStatusRunning {
		return nil, domain.ErrRunNotCancellable
	}

	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}

	run.MarkCancelled()
	if err := s.updateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Shutdown waits for in-flight runs, cancelling them if the context expires
// first.
func (s *RunService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.rootCancel()
		<-done
		return ctx.Err()
	}
}

func (s *RunService) updateRun(ctx context.Context, run *domain.PipelineRun) error {
	if err := s.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}
