package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type forumRepository interface {
	List(ctx context.Context, filter models.ForumFilter) ([]models.ForumMessage, int, error)
	FindByID(ctx context.Context, id string) (*models.ForumMessage, error)
	Create(ctx context.Context, message *models.ForumMessage) error
	Delete(ctx context.Context, id string) error
}

// PostMessageRequest is the payload for posting to a forum thread. The
// sender identity is taken from the authenticated user, never the body.
type PostMessageRequest struct {
	Thread  string `json:"thread" validate:"required,max=64"`
	Content string `json:"content" validate:"required,max=2000"`
}

// ForumService provides discussion thread use cases.
type ForumService struct {
	repo      forumRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewForumService constructs a ForumService.
func NewForumService(repo forumRepository, validate *validator.Validate, logger *zap.Logger) *ForumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ForumService{repo: repo, validator: validate, logger: logger}
}

// List returns messages in a thread, oldest first.
func (s *ForumService) List(ctx context.Context, filter models.ForumFilter) ([]models.ForumMessage, *models.Pagination, error) {
	messages, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return messages, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Post publishes a message in the named thread on behalf of the sender.
func (s *ForumService) Post(ctx context.Context, sender models.UserInfo, req PostMessageRequest) (*models.ForumMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	message := &models.ForumMessage{
		Thread:     req.Thread,
		SenderName: sender.FullName,
		SenderRole: sender.Role,
		Content:    req.Content,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}
	return message, nil
}

// Delete removes a message. Only the original sender (matched by name and
// role) or an admin may remove it.
func (s *ForumService) Delete(ctx context.Context, requester models.UserInfo, id string) error {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch message")
	}

	isSender := message.SenderName == requester.FullName && message.SenderRole == requester.Role
	if !isSender && requester.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the sender may delete this message")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete message")
	}
	s.logger.Info("forum message deleted", zap.String("message_id", id), zap.String("by", requester.ID))
	return nil
}
