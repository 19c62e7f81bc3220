package handlers

import (
	"net/http"

	"pipeline-orchestrator/internal/adapters/primary/http/dto"
	"pipeline-orchestrator/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListEnvironments(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	envs, err := h.envSvc.List(c.Request.Context(), projectID)
	if err != nil {
		log.WithError(err).Error("list environments failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.EnvironmentResponse, 0, len(envs))
	for _, env := range envs {
		items = append(items, dto.ToEnvironmentResponse(env))
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) GetEnvironment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid environment id"})
		return
	}

	env, err := h.envSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEnvironmentResponse(env))
}

func (h *Handler) CreateEnvironment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.CreateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	env, err := h.envSvc.Create(
		c.Request.Context(), projectID,
		req.Name, req.Description, req.Rank,
		req.Namespace, req.ManifestPath, req.RequiresReleaseTag,
	)
	if err != nil {
		log.WithError(err).Error("create environment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEnvironmentResponse(env))
}

func (h *Handler) UpdateEnvironment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid environment id"})
		return
	}

	var req dto.UpdateEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	env, err := h.envSvc.Update(
		c.Request.Context(), projectID, id,
		req.Name, req.Description, req.Namespace, req.ManifestPath, req.ExternalID,
		req.Rank, req.RequiresReleaseTag,
	)
	if err != nil {
		log.WithError(err).Error("update environment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEnvironmentResponse(env))
}

func (h *Handler) DeleteEnvironment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid environment id"})
		return
	}

	if err := h.envSvc.Delete(c.Request.Context(), projectID, id); err != nil {
		log.WithError(err).Error("delete environment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
