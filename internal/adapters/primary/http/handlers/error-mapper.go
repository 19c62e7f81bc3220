package handlers

import (
	"errors"
	"net/http"

	"pipeline-orchestrator/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrPipelineNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrStageRunNotFound),
		errors.Is(err, domain.ErrStepRunNotFound),
		errors.Is(err, domain.ErrEnvironmentNotFound),
		errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrPromotionNotFound),
		errors.Is(err, domain.ErrScanReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrPipelineNameConflict),
		errors.Is(err, domain.ErrPipelineRepoConflict),
		errors.Is(err, domain.ErrEnvironmentNameConflict),
		errors.Is(err, domain.ErrEnvironmentRankConflict),
		errors.Is(err, domain.ErrArtifactConflict),
		errors.Is(err, domain.ErrAlreadyPromoted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidPipelineName),
		errors.Is(err, domain.ErrInvalidRepoURL),
		errors.Is(err, domain.ErrMissingProjectID),
		errors.Is(err, domain.ErrNoStages),
		errors.Is(err, domain.ErrDuplicateStageName),
		errors.Is(err, domain.ErrUnknownStageDependency),
		errors.Is(err, domain.ErrStageCycle),
		errors.Is(err, domain.ErrStageWithoutSteps),
		errors.Is(err, domain.ErrInvalidStageName),
		errors.Is(err, domain.ErrInvalidTriggerKind),
		errors.Is(err, domain.ErrInvalidStepKind),
		errors.Is(err, domain.ErrInvalidStepCommand),
		errors.Is(err, domain.ErrProdStageNotTagTriggered),
		errors.Is(err, domain.ErrRunNotCancellable),
		errors.Is(err, domain.ErrMissingCommitSHA),
		errors.Is(err, domain.ErrMissingRepository),
		errors.Is(err, domain.ErrInvalidEnvironmentName),
		errors.Is(err, domain.ErrInvalidEnvironmentRank),
		errors.Is(err, domain.ErrInvalidManifestPath),
		errors.Is(err, domain.ErrEnvironmentHasPromotions),
		errors.Is(err, domain.ErrInvalidImageRepo),
		errors.Is(err, domain.ErrInvalidCommitSHA),
		errors.Is(err, domain.ErrArtifactDigestMissing),
		errors.Is(err, domain.ErrReleaseTagRequired),
		errors.Is(err, domain.ErrPreviousEnvNotSynced),
		errors.Is(err, domain.ErrManifestImageNotFound),
		errors.Is(err, domain.ErrInvalidSeverity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Unauthorized
	case errors.Is(err, domain.ErrBadWebhookSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
