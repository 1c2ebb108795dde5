package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type absenceRepository interface {
	List(ctx context.Context, filter models.AbsenceFilter) ([]models.AbsenceDetail, error)
	FindByID(ctx context.Context, id string) (*models.AbsenceDetail, error)
	Create(ctx context.Context, absence *models.Absence) error
	Update(ctx context.Context, absence *models.Absence) error
	Delete(ctx context.Context, id string) error
}

// CreateAbsenceRequest is the payload for recording an absence.
type CreateAbsenceRequest struct {
	StudentID string    `json:"student_id" validate:"required,uuid4"`
	CourseID  string    `json:"course_id" validate:"required,uuid4"`
	Date      time.Time `json:"date" validate:"required"`
	Justified bool      `json:"justified"`
}

// UpdateAbsenceRequest is the payload for amending an absence, typically to
// mark it justified after the fact.
type UpdateAbsenceRequest struct {
	Date      time.Time `json:"date" validate:"required"`
	Justified bool      `json:"justified"`
}

// AbsenceService provides absence management use cases.
type AbsenceService struct {
	repo      absenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAbsenceService constructs an AbsenceService.
func NewAbsenceService(repo absenceRepository, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AbsenceService{repo: repo, validator: validate, logger: logger}
}

// List returns absences matching the filter, most recent first.
func (s *AbsenceService) List(ctx context.Context, filter models.AbsenceFilter) ([]models.AbsenceDetail, error) {
	absences, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return absences, nil
}

// Get fetches a single absence.
func (s *AbsenceService) Get(ctx context.Context, id string) (*models.AbsenceDetail, error) {
	absence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch absence")
	}
	return absence, nil
}

// Create records a new absence.
func (s *AbsenceService) Create(ctx context.Context, req CreateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}
	absence := &models.Absence{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Date:      req.Date,
		Justified: req.Justified,
	}
	if err := s.repo.Create(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
	}
	s.logger.Info("absence recorded", zap.String("absence_id", absence.ID), zap.String("student_id", absence.StudentID))
	return absence, nil
}

// Update amends an existing absence.
func (s *AbsenceService) Update(ctx context.Context, id string, req UpdateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch absence")
	}

	absence := existing.Absence
	absence.Date = req.Date
	absence.Justified = req.Justified

	if err := s.repo.Update(ctx, &absence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence")
	}
	return &absence, nil
}

// Delete removes an absence.
func (s *AbsenceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	return nil
}
