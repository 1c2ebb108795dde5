package service

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/pkg/config"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/storage"
)

// Upload kinds map onto separate directories and MIME allow-lists.
const (
	UploadKindHomework = "homework"
	UploadKindPhoto    = "photo"
)

// UploadResult describes a stored file.
type UploadResult struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// UploadService validates and persists user uploads.
type UploadService struct {
	storage *storage.LocalStorage
	cfg     config.UploadsConfig
	logger  *zap.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(store *storage.LocalStorage, cfg config.UploadsConfig, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{storage: store, cfg: cfg, logger: logger}
}

// SaveHomework stores a homework document. Only PDF and Word documents pass.
func (s *UploadService) SaveHomework(filename, contentType string, size int64, r io.Reader) (*UploadResult, error) {
	return s.save(UploadKindHomework, s.cfg.HomeworkMIMETypes, filename, contentType, size, r)
}

// SavePhoto stores a photo. Only JPEG and PNG pass.
func (s *UploadService) SavePhoto(filename, contentType string, size int64, r io.Reader) (*UploadResult, error) {
	return s.save(UploadKindPhoto, s.cfg.PhotoMIMETypes, filename, contentType, size, r)
}

func (s *UploadService) save(kind string, allowed []string, filename, contentType string, size int64, r io.Reader) (*UploadResult, error) {
	if size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}

	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	if !mimeAllowed(mediaType, allowed) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("file type %q is not allowed", mediaType))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	relPath := filepath.Join(kind, uuid.NewString()+ext)

	stored, err := s.storage.SaveStream(relPath, io.LimitReader(r, s.cfg.MaxFileSizeBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	s.logger.Info("file uploaded", zap.String("kind", kind), zap.String("path", stored), zap.String("content_type", mediaType))
	return &UploadResult{
		Path:        stored,
		URL:         "/uploads/" + filepath.ToSlash(stored),
		ContentType: mediaType,
		SizeBytes:   size,
	}, nil
}

func mimeAllowed(mediaType string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, mediaType) {
			return true
		}
	}
	return false
}
