package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// ForumHandler exposes discussion thread endpoints.
type ForumHandler struct {
	forum *service.ForumService
}

// NewForumHandler constructs a ForumHandler.
func NewForumHandler(forum *service.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

// List godoc
// @Summary List forum messages
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param thread query string false "Thread name"
// @Success 200 {object} response.Envelope{data=[]models.ForumMessage}
// @Router /forum [get]
func (h *ForumHandler) List(c *gin.Context) {
	filter := models.ForumFilter{
		Thread:   c.Query("thread"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	messages, pagination, err := h.forum.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, messages, pagination)
}

// Post godoc
// @Summary Post a forum message
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PostMessageRequest true "Message"
// @Success 201 {object} response.Envelope{data=models.ForumMessage}
// @Router /forum [post]
func (h *ForumHandler) Post(c *gin.Context) {
	sender, ok := currentUserInfo(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	message, err := h.forum.Post(c.Request.Context(), sender, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// Delete godoc
// @Summary Delete a forum message
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forum/{id} [delete]
func (h *ForumHandler) Delete(c *gin.Context) {
	requester, ok := currentUserInfo(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.forum.Delete(c.Request.Context(), requester, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
