package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Subject    string `json:"subject" validate:"required,max=64"`
	TeacherID  string `json:"teacher_id" validate:"required,uuid4"`
	ClassGroup string `json:"class_group" validate:"required,max=32"`
	Schedule   string `json:"schedule" validate:"omitempty,max=128"`
	Room       string `json:"room" validate:"omitempty,max=32"`
}

// UpdateCourseRequest is the payload for editing a course.
type UpdateCourseRequest struct {
	Subject    string `json:"subject" validate:"required,max=64"`
	TeacherID  string `json:"teacher_id" validate:"required,uuid4"`
	ClassGroup string `json:"class_group" validate:"required,max=32"`
	Schedule   string `json:"schedule" validate:"omitempty,max=128"`
	Room       string `json:"room" validate:"omitempty,max=32"`
}

// BulkDeleteCoursesRequest names the courses to remove in one call.
type BulkDeleteCoursesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=50,dive,required"`
}

// CourseService provides course management use cases.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses matching the filter along with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	return course, nil
}

// Create registers a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		Subject:    req.Subject,
		TeacherID:  req.TeacherID,
		ClassGroup: req.ClassGroup,
		Schedule:   req.Schedule,
		Room:       req.Room,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("subject", course.Subject))
	return course, nil
}

// Update edits an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	course := existing.Course
	course.Subject = req.Subject
	course.TeacherID = req.TeacherID
	course.ClassGroup = req.ClassGroup
	course.Schedule = req.Schedule
	course.Room = req.Room

	if err := s.repo.Update(ctx, &course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return &course, nil
}

// Delete removes a course. Notes and absences referencing it are untouched.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// BulkDelete removes courses best-effort and in parallel. Each identifier
// gets its own outcome; successes stand even when siblings fail.
func (s *CourseService) BulkDelete(ctx context.Context, req BulkDeleteCoursesRequest) ([]models.BulkDeleteOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk delete payload")
	}

	outcomes := make([]models.BulkDeleteOutcome, len(req.IDs))
	var wg sync.WaitGroup
	for i, id := range req.IDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			outcome := models.BulkDeleteOutcome{ID: id}
			if err := s.repo.Delete(ctx, id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					outcome.Error = "course not found"
				} else {
					outcome.Error = "delete failed"
					s.logger.Warn("bulk course delete failed", zap.String("course_id", id), zap.Error(err))
				}
			} else {
				outcome.Deleted = true
			}
			outcomes[i] = outcome
		}(i, id)
	}
	wg.Wait()

	return outcomes, nil
}
