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

// NoteRepository manages persistence for grade records.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// List returns notes matching the provided filters, most recent first.
func (r *NoteRepository) List(ctx context.Context, filter models.NoteFilter) ([]models.NoteDetail, error) {
	base := `FROM notes n
        LEFT JOIN students s ON s.id = n.student_id
        LEFT JOIN courses c ON c.id = n.course_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("n.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("n.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("n.created_at >= $%d", len(args)+1))
		args = append(args, *filter.Since)
	}

	query := fmt.Sprintf(`SELECT n.id, n.student_id, n.course_id, n.value, n.label, n.created_at,
        COALESCE(s.full_name, '') AS student_name, COALESCE(c.subject, '') AS course_subject
        %s WHERE %s ORDER BY n.created_at DESC`, base, strings.Join(conditions, " AND "))

	var notes []models.NoteDetail
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// FindByID fetches a note by ID.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*models.NoteDetail, error) {
	const query = `SELECT n.id, n.student_id, n.course_id, n.value, n.label, n.created_at,
        COALESCE(s.full_name, '') AS student_name, COALESCE(c.subject, '') AS course_subject
        FROM notes n
        LEFT JOIN students s ON s.id = n.student_id
        LEFT JOIN courses c ON c.id = n.course_id
        WHERE n.id = $1`
	var note models.NoteDetail
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		return nil, err
	}
	return &note, nil
}

// Create inserts a new note record.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notes (id, student_id, course_id, value, label, created_at)
        VALUES (:id, :student_id, :course_id, :value, :label, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Update modifies an existing note.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	const query = `UPDATE notes SET student_id = :student_id, course_id = :course_id, value = :value, label = :label WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, note)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a note by identifier.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireRowsAffected(result)
}
