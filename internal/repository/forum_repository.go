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

// ForumRepository manages persistence for forum messages.
type ForumRepository struct {
	db *sqlx.DB
}

// NewForumRepository constructs a ForumRepository.
func NewForumRepository(db *sqlx.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// List returns forum messages, oldest first within a thread.
func (r *ForumRepository) List(ctx context.Context, filter models.ForumFilter) ([]models.ForumMessage, int, error) {
	base := "FROM forum_messages m"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Thread != "" {
		conditions = append(conditions, fmt.Sprintf("m.thread = $%d", len(args)+1))
		args = append(args, filter.Thread)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT m.id, m.thread, m.sender_name, m.sender_role, m.content, m.created_at
        %s ORDER BY m.created_at ASC LIMIT %d OFFSET %d`, base, size, offset)

	var messages []models.ForumMessage
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list forum messages: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count forum messages: %w", err)
	}
	return messages, total, nil
}

// FindByID fetches a forum message by ID.
func (r *ForumRepository) FindByID(ctx context.Context, id string) (*models.ForumMessage, error) {
	const query = `SELECT id, thread, sender_name, sender_role, content, created_at FROM forum_messages WHERE id = $1`
	var message models.ForumMessage
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// Create inserts a new forum message.
func (r *ForumRepository) Create(ctx context.Context, message *models.ForumMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO forum_messages (id, thread, sender_name, sender_role, content, created_at)
        VALUES (:id, :thread, :sender_name, :sender_role, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create forum message: %w", err)
	}
	return nil
}

// Delete removes a forum message by identifier.
func (r *ForumRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM forum_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete forum message: %w", err)
	}
	return requireRowsAffected(result)
}
