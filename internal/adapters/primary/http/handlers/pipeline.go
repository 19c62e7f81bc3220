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

func (h *Handler) ListPipelines(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := output.PipelineListFilter{
		ProjectID: projectID,
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
		Limit:     limit,
		Offset:    offset,
	}

	pipelines, total, err := h.pipelineSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list pipelines failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.PipelineResponse, 0, len(pipelines))
	for _, p := range pipelines {
		items = append(items, dto.ToPipelineResponse(p))
	}

	c.JSON(http.StatusOK, dto.ListPipelinesResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetPipeline(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pipeline id"})
		return
	}

	pipeline, err := h.pipelineSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPipelineResponse(pipeline))
}

func (h *Handler) CreatePipeline(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.CreatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pipeline, err := h.pipelineSvc.Create(
		c.Request.Context(), projectID,
		req.Name, req.Description, req.RepoURL, req.DefaultBranch,
		dto.ToDomainStages(req.Stages), req.Labels,
	)
	if err != nil {
		log.WithError(err).Error("create pipeline failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPipelineResponse(pipeline))
}

func (h *Handler) UpdatePipeline(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pipeline id"})
		return
	}

	var req dto.UpdatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pipeline, err := h.pipelineSvc.Update(
		c.Request.Context(), projectID, id,
		req.Name, req.Description, req.DefaultBranch,
		dto.ToDomainStages(req.Stages), req.Labels,
	)
	if err != nil {
		log.WithError(err).Error("update pipeline failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPipelineResponse(pipeline))
}

func (h *Handler) DeletePipeline(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pipeline id"})
		return
	}

	if err := h.pipelineSvc.Delete(c.Request.Context(), projectID, id); err != nil {
		log.WithError(err).Error("delete pipeline failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func getProjectID(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader("Project-ID")
	if header == "" {
		return uuid.Nil, domain.ErrMissingProjectID
	}
	return uuid.Parse(header)
}
