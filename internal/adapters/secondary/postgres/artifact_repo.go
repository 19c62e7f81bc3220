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

type artifactRepo struct {
	pool *pgxpool.Pool
}

// NewArtifactRepository creates a new ArtifactRepository
func NewArtifactRepository(pool *pgxpool.Pool) output.ArtifactRepository {
	return &artifactRepo{pool: pool}
}

const artifactColumns = `
	id, created_at, updated_at, project_id, pipeline_id, run_id,
	image_repo, tag, digest, commit_sha, release_tag, built_at
`

func (r *artifactRepo) Create(ctx context.Context, artifact *domain.Artifact) error {
	query := `
		INSERT INTO artifact
			(id, created_at, updated_at, project_id, pipeline_id, run_id,
			 image_repo, tag, digest, commit_sha, release_tag, built_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		artifact.ID, artifact.CreatedAt, artifact.UpdatedAt,
		artifact.ProjectID, artifact.PipelineID, artifact.RunID,
		artifact.ImageRepo, artifact.Tag, artifact.Digest,
		artifact.CommitSHA, artifact.ReleaseTag, artifact.BuiltAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrArtifactConflict
		}
		return fmt.Errorf("create artifact: %w", err)
	}
	return nil
}

func (r *artifactRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Artifact, error) {
	query := fmt.Sprintf(`SELECT %s FROM artifact WHERE id = $1 AND project_id = $2`, artifactColumns)

	artifact, err := r.scanArtifact(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("get artifact by id: %w", err)
	}
	return artifact, nil
}

func (r *artifactRepo) GetByDigest(ctx context.Context, projectID uuid.UUID, digest string) (*domain.Artifact, error) {
	query := fmt.Sprintf(`SELECT %s FROM artifact WHERE digest = $1 AND project_id = $2`, artifactColumns)

	artifact, err := r.scanArtifact(r.pool.QueryRow(ctx, query, digest, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("get artifact by digest: %w", err)
	}
	return artifact, nil
}

func (r *artifactRepo) GetByCommit(ctx context.Context, projectID, pipelineID uuid.UUID, commitSHA string) (*domain.Artifact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM artifact
		WHERE project_id = $1 AND pipeline_id = $2 AND commit_sha = $3
		ORDER BY built_at DESC
		LIMIT 1
	`, artifactColumns)

	artifact, err := r.scanArtifact(r.pool.QueryRow(ctx, query, projectID, pipelineID, commitSHA))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("get artifact by commit: %w", err)
	}
	return artifact, nil
}

func (r *artifactRepo) Update(ctx context.Context, projectID uuid.UUID, artifact *domain.Artifact) error {
	query := `
		UPDATE artifact
		SET run_id = $1, tag = $2, digest = $3, release_tag = $4, updated_at = NOW()
		WHERE id = $5 AND project_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		artifact.RunID, artifact.Tag, artifact.Digest, artifact.ReleaseTag,
		artifact.ID, projectID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrArtifactConflict
		}
		return fmt.Errorf("update artifact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrArtifactNotFound
	}
	return nil
}

func (r *artifactRepo) List(ctx context.Context, filter output.ArtifactListFilter) ([]*domain.Artifact, int, error) {
	conditions := []string{"project_id = $1"}
	args := []interface{}{filter.ProjectID}
	argPos := 2

	if filter.PipelineID != nil {
		conditions = append(conditions, fmt.Sprintf("pipeline_id = $%d", argPos))
		args = append(args, *filter.PipelineID)
		argPos++
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tag = $%d", argPos))
		args = append(args, filter.Tag)
		argPos++
	}
	if filter.CommitSHA != "" {
		conditions = append(conditions, fmt.Sprintf("commit_sha = $%d", argPos))
		args = append(args, filter.CommitSHA)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM artifact WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count artifacts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM artifact
		WHERE %s
		ORDER BY built_at DESC
		LIMIT $%d OFFSET $%d
	`, artifactColumns, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*domain.Artifact
	for rows.Next() {
		artifact, err := r.scanArtifact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan artifact row: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate artifact rows: %w", err)
	}

	return artifacts, total, nil
}

func (r *artifactRepo) scanArtifact(row pgx.Row) (*domain.Artifact, error) {
	artifact := &domain.Artifact{}
	err := row.Scan(
		&artifact.ID, &artifact.CreatedAt, &artifact.UpdatedAt,
		&artifact.ProjectID, &artifact.PipelineID, &artifact.RunID,
		&artifact.ImageRepo, &artifact.Tag, &artifact.Digest,
		&artifact.CommitSHA, &artifact.ReleaseTag, &artifact.BuiltAt,
	)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}
