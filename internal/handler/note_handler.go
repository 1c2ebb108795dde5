package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// NoteHandler exposes grade endpoints.
type NoteHandler struct {
	notes    *service.NoteService
	parents  *service.ParentService
	students *service.StudentService
}

// NewNoteHandler constructs a NoteHandler.
func NewNoteHandler(notes *service.NoteService, parents *service.ParentService, students *service.StudentService) *NoteHandler {
	return &NoteHandler{notes: notes, parents: parents, students: students}
}

// List godoc
// @Summary List notes
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student ID"
// @Param course_id query string false "Course ID"
// @Success 200 {object} response.Envelope{data=[]models.NoteDetail}
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	filter := models.NoteFilter{
		StudentID: c.Query("student_id"),
		CourseID:  c.Query("course_id"),
	}

	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleParent {
		notes, err := h.listForParent(c, claims.UserID, filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, 200, notes, nil)
		return
	}

	// students only ever see their own grades
	if claims != nil && claims.Role == models.RoleStudent {
		own, err := h.students.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if filter.StudentID != "" && filter.StudentID != own.ID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "records of another student are not accessible"))
			return
		}
		filter.StudentID = own.ID
	}

	notes, err := h.notes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, notes, nil)
}

// listForParent restricts results to the parent's own children.
func (h *NoteHandler) listForParent(c *gin.Context, userID string, filter models.NoteFilter) ([]models.NoteDetail, error) {
	parent, err := h.parents.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	children, err := h.students.ListChildren(c.Request.Context(), parent.ID)
	if err != nil {
		return nil, err
	}
	childSet := make(map[string]struct{}, len(children))
	for _, child := range children {
		childSet[child.ID] = struct{}{}
	}

	if filter.StudentID != "" {
		if _, ok := childSet[filter.StudentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not linked to this account")
		}
		return h.notes.List(c.Request.Context(), filter)
	}

	all := []models.NoteDetail{}
	for _, child := range children {
		childFilter := filter
		childFilter.StudentID = child.ID
		notes, err := h.notes.List(c.Request.Context(), childFilter)
		if err != nil {
			return nil, err
		}
		all = append(all, notes...)
	}
	return all, nil
}

// Get godoc
// @Summary Fetch a note
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope{data=models.NoteDetail}
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	note, err := h.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := guardStudentScope(c, h.parents, h.students, note.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, note, nil)
}

// Create godoc
// @Summary Record a grade
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateNoteRequest true "Note"
// @Success 201 {object} response.Envelope{data=models.Note}
// @Failure 400 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var req service.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	note, err := h.notes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Update godoc
// @Summary Correct a grade
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Param payload body service.UpdateNoteRequest true "Note"
// @Success 200 {object} response.Envelope{data=models.Note}
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	var req service.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	note, err := h.notes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, note, nil)
}

// Delete godoc
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
