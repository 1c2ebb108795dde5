package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/middleware"
	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
)

type studentHandlerFixture struct {
	handler  *StudentHandler
	students *studentRepoMock
	parents  *parentRepoMock
}

func newStudentHandlerFixture() *studentHandlerFixture {
	students := &studentRepoMock{students: map[string]models.Student{}}
	parents := &parentRepoMock{parents: map[string]models.Parent{}}

	studentSvc := service.NewStudentService(students, nil, zap.NewNop())
	parentSvc := service.NewParentService(parents, students, nil, zap.NewNop())

	return &studentHandlerFixture{
		handler:  NewStudentHandler(studentSvc, parentSvc),
		students: students,
		parents:  parents,
	}
}

func TestStudentHandlerListStudentSeesOwnRecordOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newStudentHandlerFixture()

	studentUserID := uuid.NewString()
	fx.students.students["s1"] = models.Student{ID: "s1", UserID: &studentUserID, FullName: "Lea Martin"}
	fx.students.students["s2"] = models.Student{ID: "s2", FullName: "Tom Petit"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent})

	fx.handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "s1", envelope.Data[0].ID)
}

func TestStudentHandlerGetStudentBlockedForOtherRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newStudentHandlerFixture()

	studentUserID := uuid.NewString()
	fx.students.students["s1"] = models.Student{ID: "s1", UserID: &studentUserID}
	fx.students.students["s2"] = models.Student{ID: "s2"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/s2", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s2"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent})

	fx.handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
