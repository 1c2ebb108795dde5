package handler

import (
	"context"
	"database/sql"
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

type reminderRepoMock struct {
	reminders map[string]models.Reminder
}

func (m *reminderRepoMock) List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, error) {
	out := []models.Reminder{}
	for _, reminder := range m.reminders {
		if filter.TeacherID != "" && reminder.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassGroup != "" && reminder.ClassGroup != filter.ClassGroup {
			continue
		}
		out = append(out, reminder)
	}
	return out, nil
}

func (m *reminderRepoMock) FindByID(ctx context.Context, id string) (*models.Reminder, error) {
	reminder, ok := m.reminders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &reminder, nil
}

func (m *reminderRepoMock) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	m.reminders[reminder.ID] = *reminder
	return nil
}

func (m *reminderRepoMock) Update(ctx context.Context, reminder *models.Reminder) error {
	if _, ok := m.reminders[reminder.ID]; !ok {
		return sql.ErrNoRows
	}
	m.reminders[reminder.ID] = *reminder
	return nil
}

func (m *reminderRepoMock) SetDone(ctx context.Context, id string, done bool) error {
	reminder, ok := m.reminders[id]
	if !ok {
		return sql.ErrNoRows
	}
	reminder.Done = done
	m.reminders[id] = reminder
	return nil
}

func (m *reminderRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.reminders[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.reminders, id)
	return nil
}

type reminderHandlerFixture struct {
	handler   *ReminderHandler
	reminders *reminderRepoMock
	teachers  *teacherRepoMock
}

func newReminderHandlerFixture() *reminderHandlerFixture {
	reminders := &reminderRepoMock{reminders: map[string]models.Reminder{}}
	teachers := &teacherRepoMock{teachers: map[string]models.Teacher{}}

	reminderSvc := service.NewReminderService(reminders, nil, zap.NewNop())
	teacherSvc := service.NewTeacherService(teachers, nil, zap.NewNop())

	return &reminderHandlerFixture{
		handler:   NewReminderHandler(reminderSvc, teacherSvc),
		reminders: reminders,
		teachers:  teachers,
	}
}

func TestReminderHandlerToggleRejectsForeignReminder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newReminderHandlerFixture()

	teacherUserID := uuid.NewString()
	fx.teachers.teachers["t1"] = models.Teacher{ID: "t1", UserID: &teacherUserID}
	fx.reminders.reminders["r1"] = models.Reminder{ID: "r1", Text: "Collect permission slips", TeacherID: "t2", Done: false}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/reminders/r1/toggle", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: teacherUserID, Role: models.RoleTeacher})

	fx.handler.Toggle(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, fx.reminders.reminders["r1"].Done)
}

func TestReminderHandlerToggleOwnReminder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newReminderHandlerFixture()

	teacherUserID := uuid.NewString()
	fx.teachers.teachers["t1"] = models.Teacher{ID: "t1", UserID: &teacherUserID}
	fx.reminders.reminders["r1"] = models.Reminder{ID: "r1", Text: "Collect permission slips", TeacherID: "t1", Done: false}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/reminders/r1/toggle", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: teacherUserID, Role: models.RoleTeacher})

	fx.handler.Toggle(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, fx.reminders.reminders["r1"].Done)
}

func TestReminderHandlerDeleteRejectsForeignReminder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newReminderHandlerFixture()

	teacherUserID := uuid.NewString()
	fx.teachers.teachers["t1"] = models.Teacher{ID: "t1", UserID: &teacherUserID}
	fx.reminders.reminders["r1"] = models.Reminder{ID: "r1", Text: "Book the gym", TeacherID: "t2"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/reminders/r1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: teacherUserID, Role: models.RoleTeacher})

	fx.handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, fx.reminders.reminders, "r1")
}
