package handlers

import (
	"net/http"
	"strconv"

	"pipeline-orchestrator/internal/adapters/primary/http/dto"
	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
	"pipeline-orchestrator/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListArtifacts(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := output.ArtifactListFilter{
		ProjectID: projectID,
		Tag:       c.Query("tag"),
		CommitSHA: c.Query("commit_sha"),
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

	artifacts, total, err := h.artifactSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list artifacts failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		items = append(items, dto.ToArtifactResponse(a))
	}

	c.JSON(http.StatusOK, dto.ListArtifactsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetArtifact(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	artifact, err := h.artifactSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToArtifactResponse(artifact))
}

func (h *Handler) RegisterArtifact(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.RegisterArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	artifact, err := h.artifactSvc.Register(c.Request.Context(), services.RegisterRequest{
		ProjectID:  projectID,
		PipelineID: req.PipelineID,
		RunID:      req.RunID,
		ImageRepo:  req.ImageRepo,
		Tag:        req.Tag,
		Digest:     req.Digest,
		CommitSHA:  req.CommitSHA,
		ReleaseTag: req.ReleaseTag,
	})
	if err != nil {
		log.WithError(err).Error("register artifact failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToArtifactResponse(artifact))
}

func (h *Handler) TagArtifact(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
		return
	}

	var req dto.TagArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	artifact, err := h.artifactSvc.Tag(c.Request.Context(), projectID, id, req.ReleaseTag)
	if err != nil {
		log.WithError(err).Error("tag artifact failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToArtifactResponse(artifact))
}
