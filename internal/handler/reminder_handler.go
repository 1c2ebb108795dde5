package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// ReminderHandler exposes reminder endpoints.
type ReminderHandler struct {
	reminders *service.ReminderService
	teachers  *service.TeacherService
}

// NewReminderHandler constructs a ReminderHandler.
func NewReminderHandler(reminders *service.ReminderService, teachers *service.TeacherService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, teachers: teachers}
}

// assertTeacherOwned rejects teachers touching a colleague's reminder.
func (h *ReminderHandler) assertTeacherOwned(c *gin.Context, id string) error {
	claims, _ := currentClaims(c)
	if claims == nil || claims.Role != models.RoleTeacher {
		return nil
	}
	reminder, err := h.reminders.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	teacher, err := h.teachers.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		return err
	}
	if reminder.TeacherID != teacher.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "reminder belongs to another teacher")
	}
	return nil
}

// List godoc
// @Summary List reminders
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param class_group query string false "Class group"
// @Param done query bool false "Done flag"
// @Success 200 {object} response.Envelope{data=[]models.Reminder}
// @Router /reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	filter := models.ReminderFilter{
		TeacherID:  c.Query("teacher_id"),
		ClassGroup: c.Query("class_group"),
	}
	if raw := c.Query("done"); raw != "" {
		done := raw == "true"
		filter.Done = &done
	}

	// teachers only see their own reminders
	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleTeacher {
		teacher, err := h.teachers.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.TeacherID = teacher.ID
	}

	reminders, err := h.reminders.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, reminders, nil)
}

// Get godoc
// @Summary Fetch a reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reminder ID"
// @Success 200 {object} response.Envelope{data=models.Reminder}
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id} [get]
func (h *ReminderHandler) Get(c *gin.Context) {
	reminder, err := h.reminders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, reminder, nil)
}

// Create godoc
// @Summary Post a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateReminderRequest true "Reminder"
// @Success 201 {object} response.Envelope{data=models.Reminder}
// @Router /reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	var req service.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	// a teacher posts in their own name regardless of the payload
	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleTeacher {
		teacher, err := h.teachers.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.TeacherID = teacher.ID
	}

	reminder, err := h.reminders.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reminder)
}

// Update godoc
// @Summary Update a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reminder ID"
// @Param payload body service.UpdateReminderRequest true "Reminder"
// @Success 200 {object} response.Envelope{data=models.Reminder}
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id} [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	var req service.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.assertTeacherOwned(c, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	reminder, err := h.reminders.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, reminder, nil)
}

// Toggle godoc
// @Summary Flip a reminder's done flag
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reminder ID"
// @Success 200 {object} response.Envelope{data=models.Reminder}
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id}/toggle [patch]
func (h *ReminderHandler) Toggle(c *gin.Context) {
	if err := h.assertTeacherOwned(c, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	reminder, err := h.reminders.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, reminder, nil)
}

// Delete godoc
// @Summary Delete a reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reminder ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	if err := h.assertTeacherOwned(c, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.reminders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
