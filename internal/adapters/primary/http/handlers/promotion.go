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

func (h *Handler) ListPromotions(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := output.PromotionListFilter{
		ProjectID: projectID,
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("artifact_id"); raw != "" {
		aid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact id"})
			return
		}
		filter.ArtifactID = &aid
	}
	if raw := c.Query("environment_id"); raw != "" {
		eid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid environment id"})
			return
		}
		filter.EnvironmentID = &eid
	}

	promotions, total, err := h.promotionSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list promotions failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.PromotionResponse, 0, len(promotions))
	for _, p := range promotions {
		items = append(items, dto.ToPromotionResponse(p))
	}

	c.JSON(http.StatusOK, dto.ListPromotionsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetPromotion(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid promotion id"})
		return
	}

	promotion, err := h.promotionSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPromotionResponse(promotion))
}

func (h *Handler) Promote(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promotion, err := h.promotionSvc.Promote(c.Request.Context(), projectID, req.ArtifactID, req.EnvironmentID)
	if err != nil {
		log.WithError(err).Error("promote failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPromotionResponse(promotion))
}

// SyncPromotion refreshes one promotion's status from the GitOps controller
// on demand, outside the background poller's cadence.
func (h *Handler) SyncPromotion(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid promotion id"})
		return
	}

	promotion, err := h.syncSvc.SyncPromotion(c.Request.Context(), projectID, id)
	if err != nil {
		log.WithError(err).Error("sync promotion failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPromotionResponse(promotion))
}
