package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/middleware"
	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

// currentClaims extracts the authenticated JWT claims from the gin context.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// guardStudentScope rejects parents and students touching records of
// students outside their scope. Other roles pass through.
func guardStudentScope(c *gin.Context, parents *service.ParentService, students *service.StudentService, studentID string) error {
	claims, ok := currentClaims(c)
	if !ok {
		return appErrors.ErrUnauthorized
	}

	switch claims.Role {
	case models.RoleParent:
		parent, err := parents.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			return err
		}
		children, err := students.ListChildren(c.Request.Context(), parent.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.ID == studentID {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrForbidden, "student is not linked to this account")
	case models.RoleStudent:
		own, err := students.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			return err
		}
		if own.ID != studentID {
			return appErrors.Clone(appErrors.ErrForbidden, "records of another student are not accessible")
		}
	}
	return nil
}

// currentUserInfo converts the claims into the response user shape.
func currentUserInfo(c *gin.Context) (models.UserInfo, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return models.UserInfo{}, false
	}
	return models.UserInfo{
		ID:       claims.UserID,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
	}, true
}
