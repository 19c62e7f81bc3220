package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

type scanReportRepo struct {
	pool *pgxpool.Pool
}

// NewScanReportRepository creates a new ScanReportRepository
func NewScanReportRepository(pool *pgxpool.Pool) output.ScanReportRepository {
	return &scanReportRepo{pool: pool}
}

func (r *scanReportRepo) Create(ctx context.Context, report *domain.ScanReport) error {
	findingsJSON, err := json.Marshal(report.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}

	query := `
		INSERT INTO scan_report
			(id, created_at, project_id, run_id, stage_name, step_name,
			 scanner, findings, highest, passed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		report.ID, report.CreatedAt, report.ProjectID,
		report.RunID, report.StageName, report.StepName,
		string(report.Scanner), findingsJSON, string(report.Highest), report.Passed,
	)
	if err != nil {
		return fmt.Errorf("create scan report: %w", err)
	}
	return nil
}

func (r *scanReportRepo) ListByRun(ctx context.Context, projectID, runID uuid.UUID) ([]*domain.ScanReport, error) {
	query := `
		SELECT id, created_at, project_id, run_id, stage_name, step_name,
		       scanner, findings, highest, passed
		FROM scan_report
		WHERE project_id = $1 AND run_id = $2
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, projectID, runID)
	if err != nil {
		return nil, fmt.Errorf("list scan reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.ScanReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan report rows: %w", err)
	}

	return reports, nil
}

func (r *scanReportRepo) scanReport(row pgx.Row) (*domain.ScanReport, error) {
	report := &domain.ScanReport{}
	var scanner, highest string
	var findingsJSON []byte

	err := row.Scan(
		&report.ID, &report.CreatedAt, &report.ProjectID,
		&report.RunID, &report.StageName, &report.StepName,
		&scanner, &findingsJSON, &highest, &report.Passed,
	)
	if err != nil {
		return nil, err
	}

	if len(findingsJSON) > 0 {
		if err := json.Unmarshal(findingsJSON, &report.Findings); err != nil {
			return nil, fmt.Errorf("unmarshal findings: %w", err)
		}
	}
	if report.Findings == nil {
		report.Findings = make(map[domain.Severity]int)
	}

	report.Scanner = domain.ScannerKind(scanner)
	report.Highest = domain.Severity(highest)
	return report, nil
}
