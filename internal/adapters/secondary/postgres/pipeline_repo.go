package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

type pipelineRepo struct {
	pool *pgxpool.Pool
}

// NewPipelineRepository creates a new PipelineRepository
func NewPipelineRepository(pool *pgxpool.Pool) output.PipelineRepository {
	return &pipelineRepo{pool: pool}
}

func (r *pipelineRepo) Create(ctx context.Context, pipeline *domain.Pipeline) error {
	stagesJSON, err := json.Marshal(pipeline.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	labelsJSON, err := json.Marshal(pipeline.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		INSERT INTO pipeline
			(id, created_at, updated_at, project_id, name, description,
			 repo_url, default_branch, stages, labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		pipeline.ID, pipeline.CreatedAt, pipeline.UpdatedAt,
		pipeline.ProjectID, pipeline.Name, pipeline.Description,
		pipeline.RepoURL, pipeline.DefaultBranch, stagesJSON, labelsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "repo_url") {
				return domain.ErrPipelineRepoConflict
			}
			return domain.ErrPipelineNameConflict
		}
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

func (r *pipelineRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Pipeline, error) {
	query := `
		SELECT id, created_at, updated_at, project_id, name, description,
		       repo_url, default_branch, stages, labels
		FROM pipeline
		WHERE id = $1 AND project_id = $2
	`

	pipeline, err := r.scanPipeline(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPipelineNotFound
		}
		return nil, fmt.Errorf("get pipeline by id: %w", err)
	}
	return pipeline, nil
}

func (r *pipelineRepo) GetByRepoURL(ctx context.Context, repoURL string) (*domain.Pipeline, error) {
	query := `
		SELECT id, created_at, updated_at, project_id, name, description,
		       repo_url, default_branch, stages, labels
		FROM pipeline
		WHERE repo_url = $1
	`

	pipeline, err := r.scanPipeline(r.pool.QueryRow(ctx, query, repoURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPipelineNotFound
		}
		return nil, fmt.Errorf("get pipeline by repo url: %w", err)
	}
	return pipeline, nil
}

func (r *pipelineRepo) Update(ctx context.Context, projectID uuid.UUID, pipeline *domain.Pipeline) error {
	stagesJSON, err := json.Marshal(pipeline.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	labelsJSON, err := json.Marshal(pipeline.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE pipeline
		SET name = $1, description = $2, default_branch = $3,
			stages = $4, labels = $5, updated_at = NOW()
		WHERE id = $6 AND project_id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		pipeline.Name, pipeline.Description, pipeline.DefaultBranch,
		stagesJSON, labelsJSON, pipeline.ID, projectID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrPipelineNameConflict
		}
		return fmt.Errorf("update pipeline: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPipelineNotFound
	}
	return nil
}

func (r *pipelineRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	query := `DELETE FROM pipeline WHERE id = $1 AND project_id = $2`

	result, err := r.pool.Exec(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("delete pipeline: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPipelineNotFound
	}
	return nil
}

func (r *pipelineRepo) List(ctx context.Context, filter output.PipelineListFilter) ([]*domain.Pipeline, int, error) {
	conditions := []string{"project_id = $1"}
	args := []interface{}{filter.ProjectID}
	argPos := 2

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR repo_url ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM pipeline WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pipelines: %w", err)
	}

	orderBy := "created_at DESC"
	if filter.SortBy != "" {
		dir := "DESC"
		if filter.Order == "asc" {
			dir = "ASC"
		}
		orderBy = fmt.Sprintf("%s %s", filter.SortBy, dir)
	}

	query := fmt.Sprintf(`
		SELECT id, created_at, updated_at, project_id, name, description,
		       repo_url, default_branch, stages, labels
		FROM pipeline
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderBy, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*domain.Pipeline
	for rows.Next() {
		pipeline, err := r.scanPipeline(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan pipeline row: %w", err)
		}
		pipelines = append(pipelines, pipeline)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pipeline rows: %w", err)
	}

	return pipelines, total, nil
}

func (r *pipelineRepo) scanPipeline(row pgx.Row) (*domain.Pipeline, error) {
	pipeline := &domain.Pipeline{}
	var stagesJSON, labelsJSON []byte

	err := row.Scan(
		&pipeline.ID, &pipeline.CreatedAt, &pipeline.UpdatedAt,
		&pipeline.ProjectID, &pipeline.Name, &pipeline.Description,
		&pipeline.RepoURL, &pipeline.DefaultBranch, &stagesJSON, &labelsJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(stagesJSON) > 0 {
		if err := json.Unmarshal(stagesJSON, &pipeline.Stages); err != nil {
			return nil, fmt.Errorf("unmarshal stages: %w", err)
		}
	}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &pipeline.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	if pipeline.Labels == nil {
		pipeline.Labels = make(map[string]string)
	}

	return pipeline, nil
}
