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

type parentRepository interface {
	List(ctx context.Context) ([]models.Parent, error)
	FindByID(ctx context.Context, id string) (*models.Parent, error)
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
	Create(ctx context.Context, parent *models.Parent) error
	Update(ctx context.Context, parent *models.Parent) error
	Delete(ctx context.Context, id string) error
}

type parentChildrenRepository interface {
	FindByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

// CreateParentRequest is the payload for registering a parent.
type CreateParentRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string  `json:"phone" validate:"omitempty,max=32"`
	UserID   *string `json:"user_id,omitempty" validate:"omitempty,uuid4"`
}

// UpdateParentRequest is the payload for editing a parent record.
type UpdateParentRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// ParentService provides parent management use cases.
type ParentService struct {
	repo      parentRepository
	students  parentChildrenRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParentService constructs a ParentService.
func NewParentService(repo parentRepository, students parentChildrenRepository, validate *validator.Validate, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ParentService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns all parents.
func (s *ParentService) List(ctx context.Context) ([]models.Parent, error) {
	parents, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parents")
	}
	return parents, nil
}

// Get fetches a parent together with their linked children.
func (s *ParentService) Get(ctx context.Context, id string) (*models.ParentDetail, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch parent")
	}

	children, err := s.students.FindByParent(ctx, parent.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load children")
	}

	return &models.ParentDetail{Parent: *parent, Children: children}, nil
}

// GetByUserID resolves the parent profile linked to an account.
func (s *ParentService) GetByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	parent, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch parent")
	}
	return parent, nil
}

// Create registers a new parent.
func (s *ParentService) Create(ctx context.Context, req CreateParentRequest) (*models.Parent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parent payload")
	}
	parent := &models.Parent{
		UserID:   req.UserID,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := s.repo.Create(ctx, parent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parent")
	}
	s.logger.Info("parent created", zap.String("parent_id", parent.ID))
	return parent, nil
}

// Update edits an existing parent.
func (s *ParentService) Update(ctx context.Context, id string, req UpdateParentRequest) (*models.Parent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parent payload")
	}
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch parent")
	}

	parent.FullName = req.FullName
	parent.Phone = req.Phone

	if err := s.repo.Update(ctx, parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update parent")
	}
	return parent, nil
}

// Delete removes a parent. Children keep their parent_id pointing at the
// removed row; there is no cascade.
func (s *ParentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete parent")
	}
	s.logger.Info("parent deleted", zap.String("parent_id", id))
	return nil
}
