package handlers

import (
	"net/http"
	"strconv"

	"pipeline-orchestrator/internal/adapters/primary/http/dto"
	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) TriggerRun(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	pipelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pipeline id"})
		return
	}

	var req dto.TriggerRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.triggerSvc.TriggerManual(
		c.Request.Context(), projectID, pipelineID,
		req.Ref, req.CommitSHA, req.ReleaseTag, req.Actor,
	)
	if err != nil {
		log.WithError(err).Error("trigger run failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRunResponse(run))
}

func (h *Handler) ListRuns(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := output.RunListFilter{
		ProjectID: projectID,
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("pipeline_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pipeline id"})
			return
		}
		filter.PipelineID = &pid
	}

	runs, total, err := h.runSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list runs failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		items = append(items, dto.ToRunResponse(r))
	}

	c.JSON(http.StatusOK, dto.ListRunsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

func (h *Handler) CancelRun(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runSvc.Cancel(c.Request.Context(), projectID, id)
	if err != nil {
		log.WithError(err).Error("cancel run failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

func (h *Handler) ListRunScanReports(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	reports, err := h.scanSvc.ListForRun(c.Request.Context(), projectID, id)
	if err != nil {
		log.WithError(err).Error("list scan reports failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ScanReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, dto.ToScanReportResponse(r))
	}

	c.JSON(http.StatusOK, dto.ListScanReportsResponse{
		Items: items,
		Total: len(items),
	})
}
