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

// ReminderRepository manages persistence for reminders ("rappels").
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository constructs a ReminderRepository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// List returns reminders matching the provided filters, newest first.
func (r *ReminderRepository) List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, error) {
	base := "FROM reminders r"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("r.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassGroup != "" {
		conditions = append(conditions, fmt.Sprintf("r.class_group = $%d", len(args)+1))
		args = append(args, filter.ClassGroup)
	}
	if filter.Done != nil {
		conditions = append(conditions, fmt.Sprintf("r.done = $%d", len(args)+1))
		args = append(args, *filter.Done)
	}

	query := fmt.Sprintf(`SELECT r.id, r.text, r.type, r.class_group, r.teacher_id, r.done, r.created_at, r.updated_at
        %s WHERE %s ORDER BY r.created_at DESC`, base, strings.Join(conditions, " AND "))

	var reminders []models.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, args...); err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// FindByID fetches a reminder by ID.
func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*models.Reminder, error) {
	const query = `SELECT id, text, type, class_group, teacher_id, done, created_at, updated_at FROM reminders WHERE id = $1`
	var reminder models.Reminder
	if err := r.db.GetContext(ctx, &reminder, query, id); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Create inserts a new reminder record.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = now
	}
	reminder.UpdatedAt = now
	const query = `INSERT INTO reminders (id, text, type, class_group, teacher_id, done, created_at, updated_at)
        VALUES (:id, :text, :type, :class_group, :teacher_id, :done, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// Update modifies an existing reminder.
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	reminder.UpdatedAt = time.Now().UTC()
	const query = `UPDATE reminders SET text = :text, type = :type, class_group = :class_group, done = :done, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, reminder)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireRowsAffected(result)
}

// SetDone flips the done flag to the provided value.
func (r *ReminderRepository) SetDone(ctx context.Context, id string, done bool) error {
	const query = `UPDATE reminders SET done = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, done, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("toggle reminder: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a reminder by identifier.
func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return requireRowsAffected(result)
}
