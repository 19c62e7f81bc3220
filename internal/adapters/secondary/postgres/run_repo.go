package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

type runRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(pool *pgxpool.Pool) output.RunRepository {
	return &runRepo{pool: pool}
}

func (r *runRepo) Create(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		INSERT INTO pipeline_run
			(id, created_at, updated_at, project_id, pipeline_id, run_number,
			 trigger_kind, repository, ref, commit_sha, release_tag, actor,
			 status, started_at, finished_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.CreatedAt, run.UpdatedAt,
		run.ProjectID, run.PipelineID, run.RunNumber,
		string(run.Trigger.Kind), run.Trigger.Repository, run.Trigger.Ref,
		run.Trigger.CommitSHA, run.Trigger.ReleaseTag, run.Trigger.Actor,
		string(run.Status), run.StartedAt, run.FinishedAt, run.Error,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.PipelineRun, error) {
	query := `
		SELECT
			r.id, r.created_at, r.updated_at, r.project_id, r.pipeline_id, r.run_number,
			r.trigger_kind, r.repository, r.ref, r.commit_sha, r.release_tag, r.actor,
			r.status, r.started_at, r.finished_at, r.error,
			p.name AS pipeline_name
		FROM pipeline_run r
		JOIN pipeline p ON p.id = r.pipeline_id
		WHERE r.id = $1 AND r.project_id = $2
	`

	run, err := r.scanRun(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}

	if err := r.loadStageRuns(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepo) Update(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		UPDATE pipeline_run
		SET status = $1, started_at = $2, finished_at = $3, error = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		string(run.Status), run.StartedAt, run.FinishedAt, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func (r *runRepo) List(ctx context.Context, filter output.RunListFilter) ([]*domain.PipelineRun, int, error) {
	conditions := []string{"r.project_id = $1"}
	args := []interface{}{filter.ProjectID}
	argPos := 2

	if filter.PipelineID != nil {
		conditions = append(conditions, fmt.Sprintf("r.pipeline_id = $%d", argPos))
		args = append(args, *filter.PipelineID)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM pipeline_run r WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			r.id, r.created_at, r.updated_at, r.project_id, r.pipeline_id, r.run_number,
			r.trigger_kind, r.repository, r.ref, r.commit_sha, r.release_tag, r.actor,
			r.status, r.started_at, r.finished_at, r.error,
			p.name AS pipeline_name
		FROM pipeline_run r
		JOIN pipeline p ON p.id = r.pipeline_id
		WHERE %s
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.PipelineRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, total, nil
}

func (r *runRepo) NextRunNumber(ctx context.Context, pipelineID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(MAX(run_number), 0) + 1
		FROM pipeline_run
		WHERE pipeline_id = $1
	`
	var number int
	if err := r.pool.QueryRow(ctx, query, pipelineID).Scan(&number); err != nil {
		return 0, fmt.Errorf("next run number: %w", err)
	}
	return number, nil
}

func (r *runRepo) CreateStageRun(ctx context.Context, sr *domain.StageRun) error {
	query := `
		INSERT INTO stage_run
			(id, run_id, stage_name, status, reason, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		sr.ID, sr.RunID, sr.StageName, string(sr.Status), sr.Reason, sr.StartedAt, sr.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create stage run: %w", err)
	}
	return nil
}

func (r *runRepo) UpdateStageRun(ctx context.Context, sr *domain.StageRun) error {
	query := `
		UPDATE stage_run
		SET status = $1, reason = $2, started_at = $3, finished_at = $4
		WHERE id = $5
	`
	result, err := r.pool.Exec(ctx, query,
		string(sr.Status), sr.Reason, sr.StartedAt, sr.FinishedAt, sr.ID,
	)
	if err != nil {
		return fmt.Errorf("update stage run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrStageRunNotFound
	}
	return nil
}

func (r *runRepo) CreateStepRun(ctx context.Context, sr *domain.StepRun) error {
	query := `
		INSERT INTO step_run
			(id, stage_run_id, name, kind, status, exit_code, output, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		sr.ID, sr.StageRunID, sr.Name, string(sr.Kind), string(sr.Status),
		sr.ExitCode, sr.Output, sr.StartedAt, sr.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create step run: %w", err)
	}
	return nil
}

func (r *runRepo) UpdateStepRun(ctx context.Context, sr *domain.StepRun) error {
	query := `
		UPDATE step_run
		SET status = $1, exit_code = $2, output = $3, finished_at = $4
		WHERE id = $5
	`
	result, err := r.pool.Exec(ctx, query,
		string(sr.Status), sr.ExitCode, sr.Output, sr.FinishedAt, sr.ID,
	)
	if err != nil {
		return fmt.Errorf("update step run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrStepRunNotFound
	}
	return nil
}

func (r *runRepo) loadStageRuns(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		SELECT id, run_id, stage_name, status, reason, started_at, finished_at
		FROM stage_run
		WHERE run_id = $1
		ORDER BY started_at NULLS LAST, stage_name
	`
	rows, err := r.pool.Query(ctx, query, run.ID)
	if err != nil {
		return fmt.Errorf("list stage runs: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*domain.StageRun)
	for rows.Next() {
		sr := &domain.StageRun{}
		var status string
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.StageName, &status, &sr.Reason, &sr.StartedAt, &sr.FinishedAt); err != nil {
			return fmt.Errorf("scan stage run row: %w", err)
		}
		sr.Status = domain.StageStatus(status)
		run.StageRuns = append(run.StageRuns, sr)
		byID[sr.ID] = sr
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate stage run rows: %w", err)
	}

	stepQuery := `
		SELECT s.id, s.stage_run_id, s.name, s.kind, s.status, s.exit_code,
		       s.output, s.started_at, s.finished_at
		FROM step_run s
		JOIN stage_run sr ON sr.id = s.stage_run_id
		WHERE sr.run_id = $1
		ORDER BY s.started_at NULLS LAST
	`
	stepRows, err := r.pool.Query(ctx, stepQuery, run.ID)
	if err != nil {
		return fmt.Errorf("list step runs: %w", err)
	}
	defer stepRows.Close()

	for stepRows.Next() {
		step := &domain.StepRun{}
		var kind, status string
		if err := stepRows.Scan(&step.ID, &step.StageRunID, &step.Name, &kind, &status,
			&step.ExitCode, &step.Output, &step.StartedAt, &step.FinishedAt); err != nil {
			return fmt.Errorf("scan step run row: %w", err)
		}
		step.Kind = domain.StepKind(kind)
		step.Status = domain.StepStatus(status)
		if sr, ok := byID[step.StageRunID]; ok {
			sr.StepRuns = append(sr.StepRuns, step)
		}
	}
	if err := stepRows.Err(); err != nil {
		return fmt.Errorf("iterate step run rows: %w", err)
	}

	return nil
}

func (r *runRepo) scanRun(row pgx.Row) (*domain.PipelineRun, error) {
	run := &domain.PipelineRun{}
	var triggerKind, status string

	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.UpdatedAt,
		&run.ProjectID, &run.PipelineID, &run.RunNumber,
		&triggerKind, &run.Trigger.Repository, &run.Trigger.Ref,
		&run.Trigger.CommitSHA, &run.Trigger.ReleaseTag, &run.Trigger.Actor,
		&status, &run.StartedAt, &run.FinishedAt, &run.Error,
		&run.PipelineName,
	)
	if err != nil {
		return nil, err
	}

	run.Trigger.Kind = domain.TriggerKind(triggerKind)
	run.Status = domain.RunStatus(status)
	return run, nil
}
