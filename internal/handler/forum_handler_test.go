package handler

import (
	"bytes"
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

type forumRepoMock struct {
	messages map[string]models.ForumMessage
}

func newForumRepoMock() *forumRepoMock {
	return &forumRepoMock{messages: map[string]models.ForumMessage{}}
}

func (m *forumRepoMock) List(ctx context.Context, filter models.ForumFilter) ([]models.ForumMessage, int, error) {
	out := []models.ForumMessage{}
	for _, msg := range m.messages {
		if filter.Thread != "" && msg.Thread != filter.Thread {
			continue
		}
		out = append(out, msg)
	}
	return out, len(out), nil
}

func (m *forumRepoMock) FindByID(ctx context.Context, id string) (*models.ForumMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &msg, nil
}

func (m *forumRepoMock) Create(ctx context.Context, message *models.ForumMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	m.messages[message.ID] = *message
	return nil
}

func (m *forumRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.messages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.messages, id)
	return nil
}

func newForumHandlerForTest(repo *forumRepoMock) *ForumHandler {
	return NewForumHandler(service.NewForumService(repo, nil, zap.NewNop()))
}

func setClaims(c *gin.Context, name string, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:   uuid.NewString(),
		FullName: name,
		Role:     role,
	})
}

func TestForumHandlerPostStampsSender(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newForumRepoMock()
	handler := newForumHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"thread":"6B-maths","content":"Homework due Friday","sender_name":"Spoofed"}`
	req, _ := http.NewRequest(http.MethodPost, "/forum", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "Mme Dupont", models.RoleTeacher)

	handler.Post(c)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, repo.messages, 1)
	for _, msg := range repo.messages {
		assert.Equal(t, "Mme Dupont", msg.SenderName)
		assert.Equal(t, models.RoleTeacher, msg.SenderRole)
		assert.Equal(t, "6B-maths", msg.Thread)
	}
}

func TestForumHandlerPostWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newForumHandlerForTest(newForumRepoMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/forum", bytes.NewBufferString(`{"thread":"6B","content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Post(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForumHandlerDeleteByOtherUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newForumRepoMock()
	repo.messages["m1"] = models.ForumMessage{
		ID:         "m1",
		Thread:     "6B-maths",
		SenderName: "Mme Dupont",
		SenderRole: models.RoleTeacher,
		Content:    "original",
	}
	handler := newForumHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/forum/m1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "m1"}}
	setClaims(c, "M. Martin", models.RoleParent)

	handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, repo.messages, 1)
}

func TestForumHandlerDeleteBySender(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newForumRepoMock()
	repo.messages["m1"] = models.ForumMessage{
		ID:         "m1",
		Thread:     "6B-maths",
		SenderName: "Mme Dupont",
		SenderRole: models.RoleTeacher,
	}
	handler := newForumHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/forum/m1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "m1"}}
	setClaims(c, "Mme Dupont", models.RoleTeacher)

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.messages)
}
