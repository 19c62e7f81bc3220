package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	"pipeline-orchestrator/internal/testutil"
)

func TestParseFindingsSummary(t *testing.T) {
	out := "scanning image...\n" +
		"found 2 HIGH, 5 MEDIUM\n" +
		`{"findings":{"high":2,"medium":5},"passed":false}`

	findings, passed, err := ParseFindingsSummary(out)
	assert.NoError(t, err)
	assert.False(t, passed)
	assert.Equal(t, 2, findings[domain.SeverityHigh])
	assert.Equal(t, 5, findings[domain.SeverityMedium])
}

func TestParseFindingsSummary_LastJSONLineWins(t *testing.T) {
	out := `{"findings":{"critical":9},"passed":false}` + "\n" +
		"retrying...\n" +
		`{"findings":{"critical":0},"passed":true}`

	findings, passed, err := ParseFindingsSummary(out)
	assert.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, 0, findings[domain.SeverityCritical])
}

func TestParseFindingsSummary_PassedDefaultsTrue(t *testing.T) {
	_, passed, err := ParseFindingsSummary(`{"findings":{"low":1}}`)
	assert.NoError(t, err)
	assert.True(t, passed)
}

func TestParseFindingsSummary_Missing(t *testing.T) {
	_, _, err := ParseFindingsSummary("no summary here\njust logs")
	assert.ErrorIs(t, err, domain.ErrScanSummaryMissing)
}

func TestParseFindingsSummary_InvalidSeverity(t *testing.T) {
	_, _, err := ParseFindingsSummary(`{"findings":{"catastrophic":1}}`)
	assert.ErrorIs(t, err, domain.ErrInvalidSeverity)
}

func TestRecordStepReport(t *testing.T) {
	scanRepo := new(testutil.MockScanReportRepo)
	svc := NewScanService(scanRepo)

	run := testRun(domain.TriggerPush, "")
	step := domain.Step{Name: "trivy", Kind: domain.StepImageScan, Command: []string{"trivy"}}

	scanRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ScanReport")).Return(nil)

	report, err := svc.RecordStepReport(context.Background(), run, "scan", step,
		`{"findings":{"high":1},"passed":false}`)
	assert.NoError(t, err)
	assert.Equal(t, domain.ScannerImageScan, report.Scanner)
	assert.Equal(t, domain.SeverityHigh, report.Highest)
	scanRepo.AssertExpectations(t)
}

func TestRecordStepReport_NonScanStep(t *testing.T) {
	svc := NewScanService(new(testutil.MockScanReportRepo))

	run := testRun(domain.TriggerPush, "")
	step := domain.Step{Name: "build", Kind: domain.StepBuildImage, Command: []string{"docker"}}

	_, err := svc.RecordStepReport(context.Background(), run, "build", step, "")
	assert.ErrorIs(t, err, domain.ErrInvalidScannerKind)
}

func TestListForRun(t *testing.T) {
	scanRepo := new(testutil.MockScanReportRepo)
	svc := NewScanService(scanRepo)

	projectID := uuid.New()
	runID := uuid.New()
	scanRepo.On("ListByRun", mock.Anything, projectID, runID).
		Return([]*domain.ScanReport{{RunID: runID}}, nil)

	reports, err := svc.ListForRun(context.Background(), projectID, runID)
	assert.NoError(t, err)
	assert.Len(t, reports, 1)
}
