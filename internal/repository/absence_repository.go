package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnup-app/learnup-api/internal/models"
)

// AbsenceRepository manages persistence for absence records.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository constructs an AbsenceRepository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// List returns absences matching the provided filters, most recent first.
func (r *AbsenceRepository) List(ctx context.Context, filter models.AbsenceFilter) ([]models.AbsenceDetail, error) {
	base := `FROM absences a
        LEFT JOIN students s ON s.id = a.student_id
        LEFT JOIN courses c ON c.id = a.course_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.Since)
	}

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.course_id, a.date, a.justified, a.created_at,
        COALESCE(s.full_name, '') AS student_name, COALESCE(c.subject, '') AS course_subject
        %s WHERE %s ORDER BY a.date DESC`, base, strings.Join(conditions, " AND "))

	var absences []models.AbsenceDetail
	if err := r.db.SelectContext(ctx, &absences, query, args...); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return absences, nil
}

// FindByID fetches an absence by ID.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.AbsenceDetail, error) {
	const query = `SELECT a.id, a.student_id, a.course_id, a.date, a.justified, a.created_at,
        COALESCE(s.full_name, '') AS student_name, COALESCE(c.subject, '') AS course_subject
        FROM absences a
        LEFT JOIN students s ON s.id = a.student_id
        LEFT JOIN courses c ON c.id = a.course_id
        WHERE a.id = $1`
	var absence models.AbsenceDetail
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// Create inserts a new absence record.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO absences (id, student_id, course_id, date, justified, created_at)
        VALUES (:id, :student_id, :course_id, :date, :justified, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// Update modifies an existing absence.
func (r *AbsenceRepository) Update(ctx context.Context, absence *models.Absence) error {
	const query = `UPDATE absences SET student_id = :student_id, course_id = :course_id, date = :date, justified = :justified WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, absence)
	if err != nil {
		return fmt.Errorf("update absence: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes an absence by identifier.
func (r *AbsenceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM absences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return requireRowsAffected(result)
}
