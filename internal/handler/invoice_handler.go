package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// InvoiceHandler exposes invoice endpoints.
type InvoiceHandler struct {
	invoices *service.InvoiceService
	parents  *service.ParentService
}

// NewInvoiceHandler constructs an InvoiceHandler.
func NewInvoiceHandler(invoices *service.InvoiceService, parents *service.ParentService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, parents: parents}
}

// List godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope{data=[]models.Invoice}
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := models.InvoiceFilter{
		ParentID:  c.Query("parent_id"),
		StudentID: c.Query("student_id"),
		Status:    models.InvoiceStatus(c.Query("status")),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}

	// parents are scoped to their own invoices
	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleParent {
		parent, err := h.parents.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.ParentID = parent.ID
	}

	invoices, pagination, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, invoices, pagination)
}

// Get godoc
// @Summary Fetch an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope{data=models.Invoice}
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleParent {
		parent, err := h.parents.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if invoice.ParentID != parent.ID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	response.JSON(c, 200, invoice, nil)
}

// Create godoc
// @Summary Issue an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} response.Envelope{data=models.Invoice}
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	invoice, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invoice)
}

// Update godoc
// @Summary Amend an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param payload body service.UpdateInvoiceRequest true "Invoice"
// @Success 200 {object} response.Envelope{data=models.Invoice}
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	invoice, err := h.invoices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, invoice, nil)
}

// Delete godoc
// @Summary Delete an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// EnqueuePDF godoc
// @Summary Queue invoice PDF rendering
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id}/pdf [post]
func (h *InvoiceHandler) EnqueuePDF(c *gin.Context) {
	id := c.Param("id")
	if err := h.invoices.EnqueuePDF(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"invoice_id": id, "status": "queued"}, nil)
}

// DownloadLink godoc
// @Summary Mint a signed download link for the rendered invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope{data=service.InvoiceDownload}
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id}/pdf-link [get]
func (h *InvoiceHandler) DownloadLink(c *gin.Context) {
	claims, _ := currentClaims(c)
	if claims != nil && claims.Role == models.RoleParent {
		invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		parent, err := h.parents.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if invoice.ParentID != parent.ID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	link, err := h.invoices.DownloadLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, link, nil)
}

// Download godoc
// @Summary Download a rendered invoice with a signed token
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing download token"))
		return
	}

	file, err := h.invoices.OpenDownload(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="invoice.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
