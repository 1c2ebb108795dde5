package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/export"
	"github.com/learnup-app/learnup-api/pkg/jobs"
	"github.com/learnup-app/learnup-api/pkg/storage"
)

// JobInvoicePDF identifies the queued render task for invoices.
const JobInvoicePDF = "invoice_pdf"

type invoiceRepository interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error)
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	SetPDFPath(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
}

type invoiceStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type pdfQueue interface {
	Enqueue(job jobs.Job) error
}

// CreateInvoiceRequest is the payload for issuing an invoice.
type CreateInvoiceRequest struct {
	ParentID    string    `json:"parent_id" validate:"required,uuid4"`
	StudentID   string    `json:"student_id" validate:"required,uuid4"`
	Label       string    `json:"label" validate:"required,max=256"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// UpdateInvoiceRequest is the payload for amending an invoice.
type UpdateInvoiceRequest struct {
	Label       string               `json:"label" validate:"required,max=256"`
	AmountCents int64                `json:"amount_cents" validate:"required,gt=0"`
	Currency    string               `json:"currency" validate:"required,len=3"`
	Status      models.InvoiceStatus `json:"status" validate:"required,oneof=PENDING PAID CANCELLED"`
	DueDate     time.Time            `json:"due_date" validate:"required"`
}

// InvoiceDownload carries the signed token for fetching a rendered invoice.
type InvoiceDownload struct {
	InvoiceID string    `json:"invoice_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InvoiceService provides invoice lifecycle and PDF rendering use cases.
type InvoiceService struct {
	repo      invoiceRepository
	students  invoiceStudentRepository
	queue     pdfQueue
	exporter  *export.PDFExporter
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(repo invoiceRepository, students invoiceStudentRepository, exporter *export.PDFExporter, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InvoiceService{
		repo:      repo,
		students:  students,
		exporter:  exporter,
		storage:   store,
		signer:    signer,
		validator: validate,
		logger:    logger,
	}
}

// SetQueue attaches the render queue. Wired after construction because the
// queue handler needs the service itself.
func (s *InvoiceService) SetQueue(q pdfQueue) {
	s.queue = q
}

// List returns invoices matching the filter along with pagination metadata.
func (s *InvoiceService) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, *models.Pagination, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return invoices, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches a single invoice.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch invoice")
	}
	return invoice, nil
}

// Create issues a new invoice in the pending state.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}
	invoice := &models.Invoice{
		ParentID:    req.ParentID,
		StudentID:   req.StudentID,
		Label:       req.Label,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      models.InvoiceStatusPending,
		DueDate:     req.DueDate,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invoice")
	}
	s.logger.Info("invoice created", zap.String("invoice_id", invoice.ID), zap.Int64("amount_cents", invoice.AmountCents))
	return invoice, nil
}

// Update amends an existing invoice.
func (s *InvoiceService) Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch invoice")
	}

	invoice.Label = req.Label
	invoice.AmountCents = req.AmountCents
	invoice.Currency = req.Currency
	invoice.Status = req.Status
	invoice.DueDate = req.DueDate

	if err := s.repo.Update(ctx, invoice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice")
	}
	return invoice, nil
}

// Delete removes an invoice and any rendered document.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch invoice")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete invoice")
	}
	if invoice.PDFPath != nil && s.storage != nil {
		if err := s.storage.Delete(*invoice.PDFPath); err != nil {
			s.logger.Warn("failed to remove invoice pdf", zap.String("invoice_id", id), zap.Error(err))
		}
	}
	return nil
}

// EnqueuePDF queues an asynchronous render of the invoice document.
func (s *InvoiceService) EnqueuePDF(ctx context.Context, id string) error {
	if s.queue == nil {
		return appErrors.Clone(appErrors.ErrInternal, "render queue unavailable")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch invoice")
	}

	job := jobs.Job{ID: uuid.NewString(), Type: JobInvoicePDF, Payload: id}
	if err := s.queue.Enqueue(job); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue render job")
	}
	s.logger.Info("invoice pdf enqueued", zap.String("invoice_id", id), zap.String("job_id", job.ID))
	return nil
}

// RenderPDF materialises the invoice document. Runs inside the job queue.
func (s *InvoiceService) RenderPDF(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", id, err)
	}

	studentName := invoice.StudentID
	if student, err := s.students.FindByID(ctx, invoice.StudentID); err == nil {
		studentName = student.FullName
	}

	amount := fmt.Sprintf("%.2f %s", float64(invoice.AmountCents)/100, invoice.Currency)
	dataset := export.Dataset{
		Headers: []string{"Label", "Student", "Amount", "Due", "Status"},
		Rows: []map[string]string{{
			"Label":   invoice.Label,
			"Student": studentName,
			"Amount":  amount,
			"Due":     invoice.DueDate.Format("2006-01-02"),
			"Status":  string(invoice.Status),
		}},
		Footer: []string{fmt.Sprintf("Invoice %s", invoice.ID), fmt.Sprintf("Issued %s", invoice.CreatedAt.Format("2006-01-02"))},
	}

	data, err := s.exporter.Render(dataset, "Invoice")
	if err != nil {
		return fmt.Errorf("render invoice %s: %w", id, err)
	}

	relPath := fmt.Sprintf("%s.pdf", invoice.ID)
	if _, err := s.storage.Save(relPath, data); err != nil {
		return fmt.Errorf("store invoice %s: %w", id, err)
	}

	if err := s.repo.SetPDFPath(ctx, id, relPath); err != nil {
		return fmt.Errorf("record invoice pdf path %s: %w", id, err)
	}

	s.logger.Info("invoice pdf rendered", zap.String("invoice_id", id), zap.String("path", relPath))
	return nil
}

// DownloadLink mints a signed token for fetching the rendered document.
// Returns 404 when the document has not been rendered yet.
func (s *InvoiceService) DownloadLink(ctx context.Context, id string) (*InvoiceDownload, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch invoice")
	}
	if invoice.PDFPath == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice document not rendered yet")
	}

	token, expiresAt, err := s.signer.Generate(invoice.ID, *invoice.PDFPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &InvoiceDownload{InvoiceID: invoice.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// OpenDownload validates a signed token and opens the underlying document.
// Invalid or expired tokens are rejected with 401.
func (s *InvoiceService) OpenDownload(ctx context.Context, id, token string) (*os.File, error) {
	resourceID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	if resourceID != id {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match invoice")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice document missing")
	}
	return file, nil
}
