package domain

import "errors"

// ============================================================================
// Pipeline Errors
// ============================================================================

var (
	ErrPipelineNotFound     = errors.New("pipeline not found")
	ErrPipelineNameConflict = errors.New("pipeline with this name already exists in the project")
	ErrPipelineRepoConflict = errors.New("pipeline for this repository already exists")
	ErrInvalidPipelineName  = errors.New("pipeline name is required")
	ErrInvalidRepoURL       = errors.New("repository URL is required")
	ErrMissingProjectID     = errors.New("project ID is required (Project-ID header)")
)

// Stage graph errors
var (
	ErrNoStages                 = errors.New("pipeline must define at least one stage")
	ErrDuplicateStageName       = errors.New("stage names must be unique within a pipeline")
	ErrUnknownStageDependency   = errors.New("stage depends on an unknown stage")
	ErrStageCycle               = errors.New("stage graph contains a cycle")
	ErrStageWithoutSteps        = errors.New("stage must define at least one step")
	ErrInvalidStageName         = errors.New("stage name is required")
	ErrInvalidTriggerKind       = errors.New("invalid trigger kind")
	ErrInvalidStepKind          = errors.New("invalid step kind")
	ErrInvalidStepCommand       = errors.New("step command is required")
	ErrProdStageNotTagTriggered = errors.New("stage targeting production must be tag triggered")
)

// ============================================================================
// Run Errors
// ============================================================================

var (
	ErrRunNotFound       = errors.New("pipeline run not found")
	ErrStageRunNotFound  = errors.New("stage run not found")
	ErrStepRunNotFound   = errors.New("step run not found")
	ErrRunNotCancellable = errors.New("run is neither pending nor running")
	ErrMissingCommitSHA  = errors.New("trigger event carries no commit SHA")
	ErrMissingRepository = errors.New("trigger event carries no repository")
)

// ============================================================================
// Environment Errors
// ============================================================================

var (
	ErrEnvironmentNotFound      = errors.New("environment not found")
	ErrEnvironmentNameConflict  = errors.New("environment with this name already exists in the project")
	ErrEnvironmentRankConflict  = errors.New("environment with this rank already exists in the project")
	ErrInvalidEnvironmentName   = errors.New("environment name is required")
	ErrInvalidEnvironmentRank   = errors.New("environment rank must be >= 1")
	ErrInvalidManifestPath      = errors.New("environment manifest path is required")
	ErrEnvironmentHasPromotions = errors.New("environment has recorded promotions")
)

// ============================================================================
// Artifact & Promotion Errors
// ============================================================================

var (
	ErrArtifactNotFound      = errors.New("artifact not found")
	ErrArtifactConflict      = errors.New("artifact with this digest already exists in the project")
	ErrInvalidImageRepo      = errors.New("artifact image repository is required")
	ErrInvalidCommitSHA      = errors.New("artifact commit SHA is required")
	ErrArtifactDigestMissing = errors.New("artifact has no resolved digest")
)

var (
	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrAlreadyPromoted       = errors.New("artifact is already promoted to this environment")
	ErrReleaseTagRequired    = errors.New("environment requires a release-tagged artifact")
	ErrPreviousEnvNotSynced  = errors.New("artifact is not synced in the preceding environment")
	ErrManifestImageNotFound = errors.New("image reference not found in manifest")
)

// ============================================================================
// Scan Errors
// ============================================================================

var (
	ErrScanReportNotFound = errors.New("scan report not found")
	ErrInvalidScannerKind = errors.New("invalid scanner kind")
	ErrScanSummaryMissing = errors.New("scanner output contains no findings summary")
	ErrInvalidSeverity    = errors.New("invalid severity")
)

// ============================================================================
// Webhook Errors
// ============================================================================

var (
	ErrBadWebhookSignature = errors.New("webhook signature verification failed")
)
