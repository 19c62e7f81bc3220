package handlers

import (
	"pipeline-orchestrator/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	pipelineSvc  *services.PipelineService
	runSvc       *services.RunService
	triggerSvc   *services.TriggerService
	envSvc       *services.EnvironmentService
	artifactSvc  *services.ArtifactService
	promotionSvc *services.PromotionService
	scanSvc      *services.ScanService
	syncSvc      *services.SyncService

	webhookSecret string
}

func New(
	pipelineSvc *services.PipelineService,
	runSvc *services.RunService,
	triggerSvc *services.TriggerService,
	envSvc *services.EnvironmentService,
	artifactSvc *services.ArtifactService,
	promotionSvc *services.PromotionService,
	scanSvc *services.ScanService,
	syncSvc *services.SyncService,
	webhookSecret string,
) *Handler {
	return &Handler{
		pipelineSvc:   pipelineSvc,
		runSvc:        runSvc,
		triggerSvc:    triggerSvc,
		envSvc:        envSvc,
		artifactSvc:   artifactSvc,
		promotionSvc:  promotionSvc,
		scanSvc:       scanSvc,
		syncSvc:       syncSvc,
		webhookSecret: webhookSecret,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Pipelines
	r.GET("/pipelines", h.ListPipelines)
	r.GET("/pipelines/:id", h.GetPipeline)
	r.POST("/pipelines", h.CreatePipeline)
	r.PATCH("/pipelines/:id", h.UpdatePipeline)
	r.DELETE("/pipelines/:id", h.DeletePipeline)

	// Runs
	r.POST("/pipelines/:id/trigger", h.TriggerRun)
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/:id", h.GetRun)
	r.POST("/runs/:id/cancel", h.CancelRun)
	r.GET("/runs/:id/scan_reports", h.ListRunScanReports)

	// Environments
	r.GET("/environments", h.ListEnvironments)
	r.GET("/environments/:id", h.GetEnvironment)
	r.POST("/environments", h.CreateEnvironment)
	r.PATCH("/environments/:id", h.UpdateEnvironment)
	r.DELETE("/environments/:id", h.DeleteEnvironment)

	// Artifacts
	r.GET("/artifacts", h.ListArtifacts)
	r.GET("/artifacts/:id", h.GetArtifact)
	r.POST("/artifacts", h.RegisterArtifact)
	r.POST("/artifacts/:id/tag", h.TagArtifact)

	// Promotions
	r.GET("/promotions", h.ListPromotions)
	r.GET("/promotions/:id", h.GetPromotion)
	r.POST("/promotions", h.Promote)
	r.POST("/promotions/:id/sync", h.SyncPromotion)
}

// RegisterWebhookRoutes wires the unauthenticated webhook endpoint. It sits
// outside the project-scoped API group; the HMAC signature is the credential.
func (h *Handler) RegisterWebhookRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/source", h.HandleSourceWebhook)
}
