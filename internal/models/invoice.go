package models

import "time"

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice bills a parent for a student.
type Invoice struct {
	ID          string        `db:"id" json:"id"`
	ParentID    string        `db:"parent_id" json:"parent_id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	Label       string        `db:"label" json:"label"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	Currency    string        `db:"currency" json:"currency"`
	Status      InvoiceStatus `db:"status" json:"status"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	PDFPath     *string       `db:"pdf_path" json:"-"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// InvoiceFilter captures filtering criteria for listing invoices.
type InvoiceFilter struct {
	ParentID  string
	StudentID string
	Status    InvoiceStatus
	Page      int
	PageSize  int
}
