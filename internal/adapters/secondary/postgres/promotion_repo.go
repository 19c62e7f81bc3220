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

type promotionRepo struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository creates a new PromotionRepository
func NewPromotionRepository(pool *pgxpool.Pool) output.PromotionRepository {
	return &promotionRepo{pool: pool}
}

const promotionSelect = `
	SELECT
		pr.id, pr.created_at, pr.updated_at, pr.project_id,
		pr.artifact_id, pr.environment_id, pr.status,
		pr.manifest_commit_sha, pr.last_error,
		e.name AS environment_name,
		a.digest AS artifact_digest
	FROM promotion pr
	JOIN environment e ON e.id = pr.environment_id
	JOIN artifact a ON a.id = pr.artifact_id
`

func (r *promotionRepo) Create(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		INSERT INTO promotion
			(id, created_at, updated_at, project_id, artifact_id, environment_id,
			 status, manifest_commit_sha, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		promotion.ID, promotion.CreatedAt, promotion.UpdatedAt,
		promotion.ProjectID, promotion.ArtifactID, promotion.EnvironmentID,
		string(promotion.Status), promotion.ManifestCommitSHA, promotion.LastError,
	)
	if err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

func (r *promotionRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Promotion, error) {
	query := promotionSelect + ` WHERE pr.id = $1 AND pr.project_id = $2`

	promotion, err := r.scanPromotion(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion by id: %w", err)
	}
	return promotion, nil
}

func (r *promotionRepo) GetByArtifactAndEnv(ctx context.Context, projectID, artifactID, environmentID uuid.UUID) (*domain.Promotion, error) {
	query := promotionSelect + `
		WHERE pr.project_id = $1 AND pr.artifact_id = $2 AND pr.environment_id = $3
		ORDER BY pr.created_at DESC
		LIMIT 1
	`

	promotion, err := r.scanPromotion(r.pool.QueryRow(ctx, query, projectID, artifactID, environmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion by artifact and environment: %w", err)
	}
	return promotion, nil
}

func (r *promotionRepo) Update(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		UPDATE promotion
		SET status = $1, manifest_commit_sha = $2, last_error = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query,
		string(promotion.Status), promotion.ManifestCommitSHA, promotion.LastError, promotion.ID,
	)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPromotionNotFound
	}
	return nil
}

func (r *promotionRepo) List(ctx context.Context, filter output.PromotionListFilter) ([]*domain.Promotion, int, error) {
	conditions := []string{"pr.project_id = $1"}
	args := []interface{}{filter.ProjectID}
	argPos := 2

	if filter.ArtifactID != nil {
		conditions = append(conditions, fmt.Sprintf("pr.artifact_id = $%d", argPos))
		args = append(args, *filter.ArtifactID)
		argPos++
	}
	if filter.EnvironmentID != nil {
		conditions = append(conditions, fmt.Sprintf("pr.environment_id = $%d", argPos))
		args = append(args, *filter.EnvironmentID)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("pr.status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM promotion pr WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promotions: %w", err)
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY pr.created_at DESC LIMIT $%d OFFSET $%d`,
		promotionSelect, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	var promotions []*domain.Promotion
	for rows.Next() {
		promotion, err := r.scanPromotion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan promotion row: %w", err)
		}
		promotions = append(promotions, promotion)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate promotion rows: %w", err)
	}

	return promotions, total, nil
}

func (r *promotionRepo) ListPending(ctx context.Context, limit int) ([]*domain.Promotion, error) {
	query := promotionSelect + `
		WHERE pr.status = 'PENDING' AND pr.manifest_commit_sha <> ''
		ORDER BY pr.created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending promotions: %w", err)
	}
	defer rows.Close()

	var promotions []*domain.Promotion
	for rows.Next() {
		promotion, err := r.scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion row: %w", err)
		}
		promotions = append(promotions, promotion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion rows: %w", err)
	}

	return promotions, nil
}

func (r *promotionRepo) CountByEnvironment(ctx context.Context, projectID, environmentID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM promotion
		WHERE project_id = $1 AND environment_id = $2
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, projectID, environmentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count promotions by environment: %w", err)
	}
	return count, nil
}

func (r *promotionRepo) scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	promotion := &domain.Promotion{}
	var status string

	err := row.Scan(
		&promotion.ID, &promotion.CreatedAt, &promotion.UpdatedAt, &promotion.ProjectID,
		&promotion.ArtifactID, &promotion.EnvironmentID, &status,
		&promotion.ManifestCommitSHA, &promotion.LastError,
		&promotion.EnvironmentName, &promotion.ArtifactDigest,
	)
	if err != nil {
		return nil, err
	}

	promotion.Status = domain.PromotionStatus(status)
	return promotion, nil
}
