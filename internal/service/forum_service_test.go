package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type mockForumRepo struct {
	messages map[string]models.ForumMessage
}

func newMockForumRepo() *mockForumRepo {
	return &mockForumRepo{messages: make(map[string]models.ForumMessage)}
}

func (m *mockForumRepo) List(_ context.Context, filter models.ForumFilter) ([]models.ForumMessage, int, error) {
	out := []models.ForumMessage{}
	for _, msg := range m.messages {
		if filter.Thread != "" && msg.Thread != filter.Thread {
			continue
		}
		out = append(out, msg)
	}
	return out, len(out), nil
}

func (m *mockForumRepo) FindByID(_ context.Context, id string) (*models.ForumMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &msg, nil
}

func (m *mockForumRepo) Create(_ context.Context, message *models.ForumMessage) error {
	if message.ID == "" {
		message.ID = "m1"
	}
	m.messages[message.ID] = *message
	return nil
}

func (m *mockForumRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.messages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.messages, id)
	return nil
}

func TestForumServiceDeleteBySenderSucceeds(t *testing.T) {
	repo := newMockForumRepo()
	svc := NewForumService(repo, nil, zap.NewNop())

	sender := models.UserInfo{ID: "u1", FullName: "Jane Doe", Role: models.RoleParent}
	message, err := svc.Post(context.Background(), sender, PostMessageRequest{Thread: "general", Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), sender, message.ID))

	_, _, err = svc.List(context.Background(), models.ForumFilter{Thread: "general"})
	require.NoError(t, err)
	assert.Empty(t, repo.messages)
}

func TestForumServiceDeleteByOtherUserForbidden(t *testing.T) {
	repo := newMockForumRepo()
	svc := NewForumService(repo, nil, zap.NewNop())

	sender := models.UserInfo{ID: "u1", FullName: "Jane Doe", Role: models.RoleParent}
	message, err := svc.Post(context.Background(), sender, PostMessageRequest{Thread: "general", Content: "hello"})
	require.NoError(t, err)

	other := models.UserInfo{ID: "u2", FullName: "John Roe", Role: models.RoleTeacher}
	err = svc.Delete(context.Background(), other, message.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// message must still be there, the rejected call mutates nothing
	assert.Len(t, repo.messages, 1)
}

func TestForumServiceDeleteByAdminSucceeds(t *testing.T) {
	repo := newMockForumRepo()
	svc := NewForumService(repo, nil, zap.NewNop())

	sender := models.UserInfo{ID: "u1", FullName: "Jane Doe", Role: models.RoleParent}
	message, err := svc.Post(context.Background(), sender, PostMessageRequest{Thread: "general", Content: "hello"})
	require.NoError(t, err)

	admin := models.UserInfo{ID: "u3", FullName: "Root", Role: models.RoleAdmin}
	require.NoError(t, svc.Delete(context.Background(), admin, message.ID))
	assert.Empty(t, repo.messages)
}

func TestForumServiceDeleteMissing(t *testing.T) {
	svc := NewForumService(newMockForumRepo(), nil, zap.NewNop())

	admin := models.UserInfo{ID: "u3", FullName: "Root", Role: models.RoleAdmin}
	err := svc.Delete(context.Background(), admin, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
