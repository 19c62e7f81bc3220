package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"pipeline-orchestrator/internal/adapters/primary/http/dto"
	"pipeline-orchestrator/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HandleSourceWebhook ingests a source-control event. The payload must be
// signed with the shared webhook secret (X-Hub-Signature-256, GitHub style);
// signature verification happens on the raw body before any decoding.
func (h *Handler) HandleSourceWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}

	if h.webhookSecret != "" {
		if !verifySignature(h.webhookSecret, body, c.GetHeader("X-Hub-Signature-256")) {
			log.WithField("client_ip", c.ClientIP()).Warn("webhook signature mismatch")
			mapDomainError(c, domain.ErrBadWebhookSignature)
			return
		}
	}

	var req dto.SourceEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := domain.TriggerEvent{
		Kind:       domain.TriggerKind(req.Kind),
		Repository: req.Repository,
		Ref:        req.Ref,
		CommitSHA:  req.CommitSHA,
		ReleaseTag: req.ReleaseTag,
		Actor:      req.Actor,
	}
	if !event.Kind.IsValid() {
		mapDomainError(c, domain.ErrInvalidTriggerKind)
		return
	}

	run, err := h.triggerSvc.HandleSourceEvent(c.Request.Context(), event)
	if err != nil {
		log.WithError(err).WithField("repository", req.Repository).Error("source event rejected")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToRunResponse(run))
}

func verifySignature(secret string, body []byte, header string) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
