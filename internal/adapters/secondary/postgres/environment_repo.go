package postgres

import (
	"context"
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

type environmentRepo struct {
	pool *pgxpool.Pool
}

// NewEnvironmentRepository creates a new EnvironmentRepository
func NewEnvironmentRepository(pool *pgxpool.Pool) output.EnvironmentRepository {
	return &environmentRepo{pool: pool}
}

const environmentColumns = `
	id, created_at, updated_at, project_id, name, description,
	rank, namespace, manifest_path, requires_release_tag, external_id
`

func (r *environmentRepo) Create(ctx context.Context, env *domain.Environment) error {
	query := `
		INSERT INTO environment
			(id, created_at, updated_at, project_id, name, description,
			 rank, namespace, manifest_path, requires_release_tag, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		env.ID, env.CreatedAt, env.UpdatedAt,
		env.ProjectID, env.Name, env.Description,
		env.Rank, env.Namespace, env.ManifestPath, env.RequiresReleaseTag, env.ExternalID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "rank") {
				return domain.ErrEnvironmentRankConflict
			}
			return domain.ErrEnvironmentNameConflict
		}
		return fmt.Errorf("create environment: %w", err)
	}
	return nil
}

func (r *environmentRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Environment, error) {
	query := fmt.Sprintf(`SELECT %s FROM environment WHERE id = $1 AND project_id = $2`, environmentColumns)

	env, err := r.scanEnvironment(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, fmt.Errorf("get environment by id: %w", err)
	}
	return env, nil
}

func (r *environmentRepo) GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.Environment, error) {
	query := fmt.Sprintf(`SELECT %s FROM environment WHERE name = $1 AND project_id = $2`, environmentColumns)

	env, err := r.scanEnvironment(r.pool.QueryRow(ctx, query, name, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, fmt.Errorf("get environment by name: %w", err)
	}
	return env, nil
}

func (r *environmentRepo) GetByRank(ctx context.Context, projectID uuid.UUID, rank int) (*domain.Environment, error) {
	query := fmt.Sprintf(`SELECT %s FROM environment WHERE rank = $1 AND project_id = $2`, environmentColumns)

	env, err := r.scanEnvironment(r.pool.QueryRow(ctx, query, rank, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, fmt.Errorf("get environment by rank: %w", err)
	}
	return env, nil
}

func (r *environmentRepo) Update(ctx context.Context, projectID uuid.UUID, env *domain.Environment) error {
	query := `
		UPDATE environment
		SET name = $1, description = $2, rank = $3, namespace = $4,
			manifest_path = $5, requires_release_tag = $6, external_id = $7, updated_at = NOW()
		WHERE id = $8 AND project_id = $9
	`

	result, err := r.pool.Exec(ctx, query,
		env.Name, env.Description, env.Rank, env.Namespace,
		env.ManifestPath, env.RequiresReleaseTag, env.ExternalID,
		env.ID, projectID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "rank") {
				return domain.ErrEnvironmentRankConflict
			}
			return domain.ErrEnvironmentNameConflict
		}
		return fmt.Errorf("update environment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEnvironmentNotFound
	}
	return nil
}

func (r *environmentRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	query := `DELETE FROM environment WHERE id = $1 AND project_id = $2`

	result, err := r.pool.Exec(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("delete environment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEnvironmentNotFound
	}
	return nil
}

func (r *environmentRepo) List(ctx context.Context, projectID uuid.UUID) ([]*domain.Environment, error) {
	query := fmt.Sprintf(`SELECT %s FROM environment WHERE project_id = $1 ORDER BY rank`, environmentColumns)

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list environments: %w", err)
	}
	defer rows.Close()

	var envs []*domain.Environment
	for rows.Next() {
		env, err := r.scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan environment row: %w", err)
		}
		envs = append(envs, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate environment rows: %w", err)
	}

	return envs, nil
}

func (r *environmentRepo) scanEnvironment(row pgx.Row) (*domain.Environment, error) {
	env := &domain.Environment{}
	err := row.Scan(
		&env.ID, &env.CreatedAt, &env.UpdatedAt,
		&env.ProjectID, &env.Name, &env.Description,
		&env.Rank, &env.Namespace, &env.ManifestPath, &env.RequiresReleaseTag, &env.ExternalID,
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}
