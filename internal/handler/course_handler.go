package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses  *service.CourseService
	teachers *service.TeacherService
	students *service.StudentService
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(courses *service.CourseService, teachers *service.TeacherService, students *service.StudentService) *CourseHandler {
	return &CourseHandler{courses: courses, teachers: teachers, students: students}
}

// assertTeacherOwned rejects teachers touching a colleague's course.
func (h *CourseHandler) assertTeacherOwned(c *gin.Context, id string) error {
	claims, _ := currentClaims(c)
	if claims == nil || claims.Role != models.RoleTeacher {
		return nil
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	teacher, err := h.teachers.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		return err
	}
	if course.TeacherID != teacher.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "course belongs to another teacher")
	}
	return nil
}

// List godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param class_group query string false "Class group"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope{data=[]models.CourseDetail}
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		TeacherID:  c.Query("teacher_id"),
		ClassGroup: c.Query("class_group"),
		Subject:    c.Query("subject"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}

	// teachers are scoped to their own courses
	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleTeacher {
		teacher, err := h.teachers.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.TeacherID = teacher.ID
	}

	// students see the courses of their own class group
	if claims != nil && claims.Role == models.RoleStudent {
		own, err := h.students.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.ClassGroup = own.ClassGroup
	}

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, courses, pagination)
}

// Get godoc
// @Summary Fetch a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope{data=models.CourseDetail}
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, course, nil)
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope{data=models.Course}
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course"
// @Success 200 {object} response.Envelope{data=models.Course}
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.assertTeacherOwned(c, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, course, nil)
}

// Delete godoc
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.assertTeacherOwned(c, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkDelete godoc
// @Summary Delete several courses best-effort
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BulkDeleteCoursesRequest true "Course IDs"
// @Success 200 {object} response.Envelope{data=[]models.BulkDeleteOutcome}
// @Router /courses/bulk-delete [post]
func (h *CourseHandler) BulkDelete(c *gin.Context) {
	var req service.BulkDeleteCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	outcomes, err := h.courses.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, outcomes, nil)
}
