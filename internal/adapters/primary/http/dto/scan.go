package dto

import (
	"time"

	"github.com/google/uuid"

	"pipeline-orchestrator/internal/core/domain"
)

type ScanReportResponse struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	ProjectID uuid.UUID      `json:"project_id"`
	RunID     uuid.UUID      `json:"run_id"`
	StageName string         `json:"stage_name"`
	StepName  string         `json:"step_name"`
	Scanner   string         `json:"scanner"`
	Findings  map[string]int `json:"findings"`
	Highest   string         `json:"highest,omitempty"`
	Passed    bool           `json:"passed"`
}

type ListScanReportsResponse struct {
	Items []ScanReportResponse `json:"items"`
	Total int                  `json:"total"`
}

func ToScanReportResponse(r *domain.ScanReport) ScanReportResponse {
	findings := make(map[string]int, len(r.Findings))
	for sev, n := range r.Findings {
		findings[string(sev)] = n
	}
	return ScanReportResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		ProjectID: r.ProjectID,
		RunID:     r.RunID,
		StageName: r.StageName,
		StepName:  r.StepName,
		Scanner:   string(r.Scanner),
		Findings:  findings,
		Highest:   string(r.Highest),
		Passed:    r.Passed,
	}
}
