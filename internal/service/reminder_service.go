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

type reminderRepository interface {
	List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, error)
	FindByID(ctx context.Context, id string) (*models.Reminder, error)
	Create(ctx context.Context, reminder *models.Reminder) error
	Update(ctx context.Context, reminder *models.Reminder) error
	SetDone(ctx context.Context, id string, done bool) error
	Delete(ctx context.Context, id string) error
}

// CreateReminderRequest is the payload for posting a reminder.
type CreateReminderRequest struct {
	Text       string `json:"text" validate:"required,max=500"`
	Type       string `json:"type" validate:"required,oneof=task notice exam homework"`
	ClassGroup string `json:"class_group" validate:"required,max=32"`
	TeacherID  string `json:"teacher_id" validate:"required,uuid4"`
}

// UpdateReminderRequest is the payload for editing a reminder.
type UpdateReminderRequest struct {
	Text       string `json:"text" validate:"required,max=500"`
	Type       string `json:"type" validate:"required,oneof=task notice exam homework"`
	ClassGroup string `json:"class_group" validate:"required,max=32"`
}

// ReminderService provides reminder management use cases.
type ReminderService struct {
	repo      reminderRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReminderService constructs a ReminderService.
func NewReminderService(repo reminderRepository, validate *validator.Validate, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReminderService{repo: repo, validator: validate, logger: logger}
}

// List returns reminders matching the filter, newest first.
func (s *ReminderService) List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, error) {
	reminders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reminders")
	}
	return reminders, nil
}

// Get fetches a single reminder.
func (s *ReminderService) Get(ctx context.Context, id string) (*models.Reminder, error) {
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reminder")
	}
	return reminder, nil
}

// Create posts a new reminder, initially not done.
func (s *ReminderService) Create(ctx context.Context, req CreateReminderRequest) (*models.Reminder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	reminder := &models.Reminder{
		Text:       req.Text,
		Type:       req.Type,
		ClassGroup: req.ClassGroup,
		TeacherID:  req.TeacherID,
		Done:       false,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reminder")
	}
	s.logger.Info("reminder created", zap.String("reminder_id", reminder.ID), zap.String("class_group", reminder.ClassGroup))
	return reminder, nil
}

// Update edits an existing reminder without touching its done flag.
func (s *ReminderService) Update(ctx context.Context, id string, req UpdateReminderRequest) (*models.Reminder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reminder")
	}

	reminder.Text = req.Text
	reminder.Type = req.Type
	reminder.ClassGroup = req.ClassGroup

	if err := s.repo.Update(ctx, reminder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reminder")
	}
	return reminder, nil
}

// Toggle flips the done flag and returns the updated reminder. Toggling
// twice restores the original state.
func (s *ReminderService) Toggle(ctx context.Context, id string) (*models.Reminder, error) {
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reminder")
	}

	next := !reminder.Done
	if err := s.repo.SetDone(ctx, id, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle reminder")
	}
	reminder.Done = next
	return reminder, nil
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reminder")
	}
	return nil
}
