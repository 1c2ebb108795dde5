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

type noteRepository interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.NoteDetail, error)
	FindByID(ctx context.Context, id string) (*models.NoteDetail, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}

// CreateNoteRequest is the payload for awarding a grade. Values outside the
// 0-20 scale are rejected.
type CreateNoteRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid4"`
	CourseID  string  `json:"course_id" validate:"required,uuid4"`
	Value     float64 `json:"value" validate:"gte=0,lte=20"`
	Label     string  `json:"label" validate:"omitempty,max=128"`
}

// UpdateNoteRequest is the payload for correcting a grade.
type UpdateNoteRequest struct {
	Value float64 `json:"value" validate:"gte=0,lte=20"`
	Label string  `json:"label" validate:"omitempty,max=128"`
}

// NoteService provides grade management use cases.
type NoteService struct {
	repo      noteRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo noteRepository, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoteService{repo: repo, validator: validate, logger: logger}
}

// List returns notes matching the filter, most recent first.
func (s *NoteService) List(ctx context.Context, filter models.NoteFilter) ([]models.NoteDetail, error) {
	notes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// Get fetches a single note.
func (s *NoteService) Get(ctx context.Context, id string) (*models.NoteDetail, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch note")
	}
	return note, nil
}

// Create records a new grade.
func (s *NoteService) Create(ctx context.Context, req CreateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "grade must be between 0 and 20")
	}
	note := &models.Note{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Value:     req.Value,
		Label:     req.Label,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	s.logger.Info("note created", zap.String("note_id", note.ID), zap.Float64("value", note.Value))
	return note, nil
}

// Update corrects an existing grade.
func (s *NoteService) Update(ctx context.Context, id string, req UpdateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "grade must be between 0 and 20")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch note")
	}

	note := existing.Note
	note.Value = req.Value
	note.Label = req.Label

	if err := s.repo.Update(ctx, &note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
	}
	return &note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	return nil
}
