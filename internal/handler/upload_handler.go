package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/learnup-app/learnup-api/internal/service"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/response"
)

// UploadHandler exposes file upload endpoints.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Homework godoc
// @Summary Upload a homework document
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF or Word document"
// @Success 201 {object} response.Envelope{data=service.UploadResult}
// @Failure 400 {object} response.Envelope
// @Router /uploads/homework [post]
func (h *UploadHandler) Homework(c *gin.Context) {
	h.handle(c, h.uploads.SaveHomework)
}

// Photo godoc
// @Summary Upload a photo
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG or PNG image"
// @Success 201 {object} response.Envelope{data=service.UploadResult}
// @Failure 400 {object} response.Envelope
// @Router /uploads/photo [post]
func (h *UploadHandler) Photo(c *gin.Context) {
	h.handle(c, h.uploads.SavePhoto)
}

func (h *UploadHandler) handle(c *gin.Context, save func(string, string, int64, io.Reader) (*service.UploadResult, error)) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart file field required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := save(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
