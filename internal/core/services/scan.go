package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// ScanService records scanner findings from step output and serves them back
// to the gate evaluator and the API.
type ScanService struct {
	scanRepo output.ScanReportRepository
}

// NewScanService creates a new ScanService
func NewScanService(scanRepo output.ScanReportRepository) *ScanService {
	return &ScanService{scanRepo: scanRepo}
}

// findingsSummary is the one-line JSON summary scanner wrappers emit as the
// last line of their output, e.g.
//
//	{"findings":{"critical":0,"high":2,"medium":5},"passed":false}
type findingsSummary struct {
	Findings map[string]int `json:"findings"`
	Passed   *bool          `json:"passed"`
}

// ParseFindingsSummary extracts the findings summary from scanner output,
// scanning from the last line backwards.
func ParseFindingsSummary(out string) (map[domain.Severity]int, bool, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var summary findingsSummary
		if err := json.Unmarshal([]byte(line), &summary); err != nil || summary.Findings == nil {
			continue
		}

		findings := make(map[domain.Severity]int, len(summary.Findings))
		for key, n := range summary.Findings {
			sev := domain.Severity(strings.ToUpper(key))
			if !sev.IsValid() {
				return nil, false, domain.ErrInvalidSeverity
			}
			findings[sev] = n
		}

		passed := true
		if summary.Passed != nil {
			passed = *summary.Passed
		}
		return findings, passed, nil
	}
	return nil, false, domain.ErrScanSummaryMissing
}

// RecordStepReport parses the findings summary out of a scan step's output
// and persists it as a ScanReport for the run.
func (s *ScanService) RecordStepReport(
	ctx context.Context,
	run *domain.PipelineRun,
	stageName string,
	step domain.Step,
	stepOutput string,
) (*domain.ScanReport, error) {
	scanner, ok := domain.ScannerForStep(step.Kind)
	if !ok {
		return nil, domain.ErrInvalidScannerKind
	}

	findings, passed, err := ParseFindingsSummary(stepOutput)
	if err != nil {
		return nil, err
	}

	report, err := domain.NewScanReport(run.ProjectID, run.ID, stageName, step.Name, scanner, findings, passed)
	if err != nil {
		return nil, err
	}
	if err := s.scanRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create scan report: %w", err)
	}
	return report, nil
}

// ListForRun returns all scan reports recorded for a run.
func (s *ScanService) ListForRun(ctx context.Context, projectID, runID uuid.UUID) ([]*domain.ScanReport, error) {
	reports, err := s.scanRepo.ListByRun(ctx, projectID, runID)
	if err != nil {
		return nil, fmt.Errorf("list scan reports: %w", err)
	}
	return reports, nil
}
