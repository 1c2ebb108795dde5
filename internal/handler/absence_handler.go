package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// AbsenceHandler exposes absence endpoints.
type AbsenceHandler struct {
	absences *service.AbsenceService
	parents  *service.ParentService
	students *service.StudentService
}

// NewAbsenceHandler constructs an AbsenceHandler.
func NewAbsenceHandler(absences *service.AbsenceService, parents *service.ParentService, students *service.StudentService) *AbsenceHandler {
	return &AbsenceHandler{absences: absences, parents: parents, students: students}
}

// List godoc
// @Summary List absences
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student ID"
// @Param course_id query string false "Course ID"
// @Success 200 {object} response.Envelope{data=[]models.AbsenceDetail}
// @Router /absences [get]
func (h *AbsenceHandler) List(c *gin.Context) {
	filter := models.AbsenceFilter{
		StudentID: c.Query("student_id"),
		CourseID:  c.Query("course_id"),
	}

	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleParent {
		absences, err := h.listForParent(c, claims.UserID, filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, 200, absences, nil)
		return
	}

	// students only ever see their own absences
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

	absences, err := h.absences.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, absences, nil)
}

func (h *AbsenceHandler) listForParent(c *gin.Context, userID string, filter models.AbsenceFilter) ([]models.AbsenceDetail, error) {
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
		return h.absences.List(c.Request.Context(), filter)
	}

	all := []models.AbsenceDetail{}
	for _, child := range children {
		childFilter := filter
		childFilter.StudentID = child.ID
		absences, err := h.absences.List(c.Request.Context(), childFilter)
		if err != nil {
			return nil, err
		}
		all = append(all, absences...)
	}
	return all, nil
}

// Get godoc
// @Summary Fetch an absence
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Absence ID"
// @Success 200 {object} response.Envelope{data=models.AbsenceDetail}
// @Failure 404 {object} response.Envelope
// @Router /absences/{id} [get]
func (h *AbsenceHandler) Get(c *gin.Context) {
	absence, err := h.absences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := guardStudentScope(c, h.parents, h.students, absence.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, absence, nil)
}

// Create godoc
// @Summary Record an absence
// @Tags absences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateAbsenceRequest true "Absence"
// @Success 201 {object} response.Envelope{data=models.Absence}
// @Router /absences [post]
func (h *AbsenceHandler) Create(c *gin.Context) {
	var req service.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	absence, err := h.absences.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, absence)
}

// Update godoc
// @Summary Amend an absence
// @Tags absences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Absence ID"
// @Param payload body service.UpdateAbsenceRequest true "Absence"
// @Success 200 {object} response.Envelope{data=models.Absence}
// @Failure 404 {object} response.Envelope
// @Router /absences/{id} [put]
func (h *AbsenceHandler) Update(c *gin.Context) {
	var req service.UpdateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	absence, err := h.absences.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, absence, nil)
}

// Delete godoc
// @Summary Delete an absence
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Absence ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /absences/{id} [delete]
func (h *AbsenceHandler) Delete(c *gin.Context) {
	if err := h.absences.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
