package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// ParentHandler exposes parent endpoints.
type ParentHandler struct {
	parents  *service.ParentService
	students *service.StudentService
}

// NewParentHandler constructs a ParentHandler.
func NewParentHandler(parents *service.ParentService, students *service.StudentService) *ParentHandler {
	return &ParentHandler{parents: parents, students: students}
}

// List godoc
// @Summary List parents
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Parent}
// @Router /parents [get]
func (h *ParentHandler) List(c *gin.Context) {
	parents, err := h.parents.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, parents, nil)
}

// Get godoc
// @Summary Fetch a parent with linked children
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Parent ID"
// @Success 200 {object} response.Envelope{data=models.ParentDetail}
// @Failure 404 {object} response.Envelope
// @Router /parents/{id} [get]
func (h *ParentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	// a parent may only read their own record
	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleParent {
		own, err := h.parents.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if own.ID != id {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	parent, err := h.parents.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, parent, nil)
}

// Children godoc
// @Summary List the authenticated parent's children
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Student}
// @Router /parents/me/children [get]
func (h *ParentHandler) Children(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	parent, err := h.parents.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	children, err := h.students.ListChildren(c.Request.Context(), parent.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, children, nil)
}

// Create godoc
// @Summary Register a parent
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateParentRequest true "Parent"
// @Success 201 {object} response.Envelope{data=models.Parent}
// @Router /parents [post]
func (h *ParentHandler) Create(c *gin.Context) {
	var req service.CreateParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	parent, err := h.parents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, parent)
}

// Update godoc
// @Summary Update a parent
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Parent ID"
// @Param payload body service.UpdateParentRequest true "Parent"
// @Success 200 {object} response.Envelope{data=models.Parent}
// @Failure 404 {object} response.Envelope
// @Router /parents/{id} [put]
func (h *ParentHandler) Update(c *gin.Context) {
	var req service.UpdateParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	parent, err := h.parents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, parent, nil)
}

// Delete godoc
// @Summary Delete a parent
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Parent ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /parents/{id} [delete]
func (h *ParentHandler) Delete(c *gin.Context) {
	if err := h.parents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
