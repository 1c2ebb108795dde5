package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// NotificationHandler exposes the parent notification feed.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Feed godoc
// @Summary Aggregated notification feed for the authenticated parent
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.NotificationFeed}
// @Failure 404 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) Feed(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	feed, cacheHit, err := h.notifications.FeedForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, feed, nil, map[string]interface{}{"cache_hit": cacheHit})
}
