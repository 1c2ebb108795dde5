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

// InvoiceRepository manages persistence for invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs an InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// List returns invoices matching the provided filters, newest first.
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error) {
	base := "FROM invoices i"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("i.parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("i.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT i.id, i.parent_id, i.student_id, i.label, i.amount_cents, i.currency, i.status, i.due_date, i.pdf_path, i.created_at, i.updated_at
        %s ORDER BY i.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	return invoices, total, nil
}

// FindByID fetches an invoice by ID.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	const query = `SELECT id, parent_id, student_id, label, amount_cents, currency, status, due_date, pdf_path, created_at, updated_at FROM invoices WHERE id = $1`
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Create inserts a new invoice record.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusPending
	}
	const query = `INSERT INTO invoices (id, parent_id, student_id, label, amount_cents, currency, status, due_date, created_at, updated_at)
        VALUES (:id, :parent_id, :student_id, :label, :amount_cents, :currency, :status, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// Update modifies an existing invoice.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET label = :label, amount_cents = :amount_cents, currency = :currency, status = :status, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, invoice)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireRowsAffected(result)
}

// SetPDFPath records the rendered document location.
func (r *InvoiceRepository) SetPDFPath(ctx context.Context, id, path string) error {
	const query = `UPDATE invoices SET pdf_path = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set invoice pdf path: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes an invoice by identifier.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRowsAffected(result)
}
