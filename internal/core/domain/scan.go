package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScannerKind classifies the security tool that produced a report.
type ScannerKind string

const (
	ScannerStaticAnalysis ScannerKind = "static_analysis"
	ScannerDependencyScan ScannerKind = "dependency_scan"
	ScannerImageScan      ScannerKind = "image_scan"
	ScannerDynamicScan    ScannerKind = "dynamic_scan"
)

// IsValid checks if the scanner kind is valid
func (k ScannerKind) IsValid() bool {
	switch k {
	case ScannerStaticAnalysis, ScannerDependencyScan, ScannerImageScan, ScannerDynamicScan:
		return true
	}
	return false
}

// ScannerForStep maps a scan-producing step kind to its scanner kind.
func ScannerForStep(kind StepKind) (ScannerKind, bool) {
	switch kind {
	case StepStaticAnalysis:
		return ScannerStaticAnalysis, true
	case StepDependencyScan:
		return ScannerDependencyScan, true
	case StepImageScan:
		return ScannerImageScan, true
	case StepDynamicScan:
		return ScannerDynamicScan, true
	}
	return "", false
}

// Severity grades a finding. Ordering matters: gates compare ranks.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is equal to or more severe than other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// ScanReport is the recorded outcome of one scanner invocation within a run.
type ScanReport struct {
	ID        uuid.UUID        `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	ProjectID uuid.UUID        `json:"project_id"`
	RunID     uuid.UUID        `json:"run_id"`
	StageName string           `json:"stage_name"`
	StepName  string           `json:"step_name"`
	Scanner   ScannerKind      `json:"scanner"`
	Findings  map[Severity]int `json:"findings"`
	Highest   Severity         `json:"highest_severity"`
	Passed    bool             `json:"passed"`
}

// NewScanReport creates a ScanReport, computing the highest severity with a
// recorded finding. Passed reflects the scanner's own exit verdict, not the
// gate decision.
func NewScanReport(projectID, runID uuid.UUID, stageName, stepName string, scanner ScannerKind, findings map[Severity]int, passed bool) (*ScanReport, error) {
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if runID == uuid.Nil {
		return nil, ErrRunNotFound
	}
	if !scanner.IsValid() {
		return nil, ErrInvalidScannerKind
	}
	if findings == nil {
		findings = make(map[Severity]int)
	}
	for sev := range findings {
		if !sev.IsValid() {
			return nil, ErrInvalidSeverity
		}
	}

	highest := SeverityInfo
	for sev, n := range findings {
		if n > 0 && sev.AtLeast(highest) {
			highest = sev
		}
	}

	return &ScanReport{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		ProjectID: projectID,
		RunID:     runID,
		StageName: stageName,
		StepName:  stepName,
		Scanner:   scanner,
		Findings:  findings,
		Highest:   highest,
		Passed:    passed,
	}, nil
}

// HasFindingsAtOrAbove reports whether the report recorded any finding at or
// above the given severity.
func (r *ScanReport) HasFindingsAtOrAbove(threshold Severity) bool {
	for sev, n := range r.Findings {
		if n > 0 && sev.AtLeast(threshold) {
			return true
		}
	}
	return false
}
