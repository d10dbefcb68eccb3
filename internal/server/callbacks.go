package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/govnotify/letterpipe/internal/notification"
	obscontext "github.com/govnotify/letterpipe/internal/observability/context"
	"github.com/govnotify/letterpipe/internal/observability/logger"
	"github.com/govnotify/letterpipe/internal/reconcile"
	"go.uber.org/zap"
)

type letterStatusRequest struct {
	ID        string `json:"id"`
	PageCount int    `json:"page_count"`
	Status    string `json:"status"`
}

// LetterStatusCallback ingests the provider's per-letter outcome report.
// A rejection is acknowledged with 200 since the state change persisted;
// the failure is alerting's concern, not the provider's.
func (s *Server) LetterStatusCallback(c *gin.Context) {
	var req letterStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_notification_id"})
		return
	}

	ctx := obscontext.WithNotificationID(c.Request.Context(), req.ID)
	err := s.reconciler.ProcessCallback(ctx, req.ID, req.PageCount, req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, reconcile.ErrNotificationTechnicalFailure):
		logger.FromContext(ctx).Error("letter rejected by provider", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, reconcile.ErrInvalidProviderStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
	case errors.Is(err, notification.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "notification_not_found"})
	default:
		logger.FromContext(ctx).Error("letter callback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
