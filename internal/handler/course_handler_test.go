package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
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

type courseRepoMock struct {
	courses map[string]models.CourseDetail
}

func (m *courseRepoMock) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	out := []models.CourseDetail{}
	for _, course := range m.courses {
		if filter.TeacherID != "" && course.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassGroup != "" && course.ClassGroup != filter.ClassGroup {
			continue
		}
		out = append(out, course)
	}
	return out, len(out), nil
}

func (m *courseRepoMock) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

func (m *courseRepoMock) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	m.courses[course.ID] = models.CourseDetail{Course: *course}
	return nil
}

func (m *courseRepoMock) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	m.courses[course.ID] = models.CourseDetail{Course: *course}
	return nil
}

func (m *courseRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	return nil
}

type teacherRepoMock struct {
	teachers map[string]models.Teacher
}

func (m *teacherRepoMock) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	out := []models.Teacher{}
	for _, teacher := range m.teachers {
		out = append(out, teacher)
	}
	return out, len(out), nil
}

func (m *teacherRepoMock) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &teacher, nil
}

func (m *teacherRepoMock) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	for _, t := range m.teachers {
		if t.UserID != nil && *t.UserID == userID {
			teacher := t
			return &teacher, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *teacherRepoMock) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *teacherRepoMock) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := m.teachers[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *teacherRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.teachers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.teachers, id)
	return nil
}

type courseHandlerFixture struct {
	handler  *CourseHandler
	courses  *courseRepoMock
	teachers *teacherRepoMock
	students *studentRepoMock
}

func newCourseHandlerFixture() *courseHandlerFixture {
	courses := &courseRepoMock{courses: map[string]models.CourseDetail{}}
	teachers := &teacherRepoMock{teachers: map[string]models.Teacher{}}
	students := &studentRepoMock{students: map[string]models.Student{}}

	courseSvc := service.NewCourseService(courses, nil, zap.NewNop())
	teacherSvc := service.NewTeacherService(teachers, nil, zap.NewNop())
	studentSvc := service.NewStudentService(students, nil, zap.NewNop())

	return &courseHandlerFixture{
		handler:  NewCourseHandler(courseSvc, teacherSvc, studentSvc),
		courses:  courses,
		teachers: teachers,
		students: students,
	}
}

func TestCourseHandlerUpdateRejectsForeignCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newCourseHandlerFixture()

	teacherUserID := uuid.NewString()
	fx.teachers.teachers["t1"] = models.Teacher{ID: "t1", UserID: &teacherUserID, FullName: "Mme Dupont"}
	fx.teachers.teachers["t2"] = models.Teacher{ID: "t2", FullName: "M. Bernard"}
	fx.courses.courses["c1"] = models.CourseDetail{Course: models.Course{ID: "c1", Subject: "History", TeacherID: "t2", ClassGroup: "CM2"}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := fmt.Sprintf(`{"subject":"Geography","teacher_id":%q,"class_group":"CM2"}`, uuid.NewString())
	req, _ := http.NewRequest(http.MethodPut, "/courses/c1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: teacherUserID, Role: models.RoleTeacher})

	fx.handler.Update(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "History", fx.courses.courses["c1"].Subject)
}

func TestCourseHandlerDeleteRejectsForeignCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newCourseHandlerFixture()

	teacherUserID := uuid.NewString()
	fx.teachers.teachers["t1"] = models.Teacher{ID: "t1", UserID: &teacherUserID}
	fx.courses.courses["c1"] = models.CourseDetail{Course: models.Course{ID: "c1", Subject: "History", TeacherID: "t2"}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/courses/c1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: teacherUserID, Role: models.RoleTeacher})

	fx.handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, fx.courses.courses, "c1")
}

func TestCourseHandlerDeleteOwnCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newCourseHandlerFixture()

	teacherUserID := uuid.NewString()
	fx.teachers.teachers["t1"] = models.Teacher{ID: "t1", UserID: &teacherUserID}
	fx.courses.courses["c1"] = models.CourseDetail{Course: models.Course{ID: "c1", Subject: "History", TeacherID: "t1"}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/courses/c1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: teacherUserID, Role: models.RoleTeacher})

	fx.handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, fx.courses.courses, "c1")
}

func TestCourseHandlerListStudentScopedToClassGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newCourseHandlerFixture()

	studentUserID := uuid.NewString()
	fx.students.students["s1"] = models.Student{ID: "s1", UserID: &studentUserID, ClassGroup: "CM2"}
	fx.courses.courses["c1"] = models.CourseDetail{Course: models.Course{ID: "c1", Subject: "Math", TeacherID: "t1", ClassGroup: "CM2"}}
	fx.courses.courses["c2"] = models.CourseDetail{Course: models.Course{ID: "c2", Subject: "Math", TeacherID: "t1", ClassGroup: "CE1"}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses?class_group=CE1", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent})

	fx.handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.CourseDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "CM2", envelope.Data[0].ClassGroup)
}
