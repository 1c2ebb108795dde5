package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnup-app/learnup-api/internal/models"
)

// ParentRepository manages persistence for parent records.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository constructs a ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// List returns all parents ordered by name.
func (r *ParentRepository) List(ctx context.Context) ([]models.Parent, error) {
	const query = `SELECT id, user_id, full_name, phone, created_at, updated_at FROM parents ORDER BY full_name ASC`
	var parents []models.Parent
	if err := r.db.SelectContext(ctx, &parents, query); err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	return parents, nil
}

// FindByID fetches a parent by ID.
func (r *ParentRepository) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	const query = `SELECT id, user_id, full_name, phone, created_at, updated_at FROM parents WHERE id = $1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, id); err != nil {
		return nil, err
	}
	return &parent, nil
}

// FindByUserID resolves a parent row from its linked account.
func (r *ParentRepository) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	const query = `SELECT id, user_id, full_name, phone, created_at, updated_at FROM parents WHERE user_id = $1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, userID); err != nil {
		return nil, err
	}
	return &parent, nil
}

// Create inserts a new parent record.
func (r *ParentRepository) Create(ctx context.Context, parent *models.Parent) error {
	if parent.ID == "" {
		parent.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if parent.CreatedAt.IsZero() {
		parent.CreatedAt = now
	}
	parent.UpdatedAt = now
	const query = `INSERT INTO parents (id, user_id, full_name, phone, created_at, updated_at)
        VALUES (:id, :user_id, :full_name, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, parent); err != nil {
		return fmt.Errorf("create parent: %w", err)
	}
	return nil
}

// Update modifies an existing parent.
func (r *ParentRepository) Update(ctx context.Context, parent *models.Parent) error {
	parent.UpdatedAt = time.Now().UTC()
	const query = `UPDATE parents SET full_name = :full_name, phone = :phone, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, parent)
	if err != nil {
		return fmt.Errorf("update parent: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a parent by identifier.
func (r *ParentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete parent: %w", err)
	}
	return requireRowsAffected(result)
}
