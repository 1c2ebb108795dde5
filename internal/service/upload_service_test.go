package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/pkg/config"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
	"github.com/learnup-app/learnup-api/pkg/storage"
)

func uploadConfig() config.UploadsConfig {
	return config.UploadsConfig{
		MaxFileSizeBytes:  1024,
		HomeworkMIMETypes: []string{"application/pdf", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		PhotoMIMETypes:    []string{"image/jpeg", "image/png"},
	}
}

func newTestUploadService(t *testing.T) *UploadService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewUploadService(store, uploadConfig(), zap.NewNop())
}

func TestUploadServiceRejectsSVGHomework(t *testing.T) {
	svc := newTestUploadService(t)

	_, err := svc.SaveHomework("diagram.svg", "image/svg+xml", 64, strings.NewReader("<svg/>"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedMedia.Code, appErrors.FromError(err).Code)
}

func TestUploadServiceAcceptsPDFHomework(t *testing.T) {
	svc := newTestUploadService(t)

	result, err := svc.SaveHomework("essay.pdf", "application/pdf; charset=binary", 64, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/uploads/homework/"))
	assert.True(t, strings.HasSuffix(result.Path, ".pdf"))
	assert.Equal(t, "application/pdf", result.ContentType)
}

func TestUploadServiceRejectsOversizedFile(t *testing.T) {
	svc := newTestUploadService(t)

	_, err := svc.SavePhoto("big.png", "image/png", 4096, strings.NewReader("..."))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErrors.FromError(err).Code)
}

func TestUploadServicePhotoAllowList(t *testing.T) {
	svc := newTestUploadService(t)

	_, err := svc.SavePhoto("doc.pdf", "application/pdf", 64, strings.NewReader("%PDF"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedMedia.Code, appErrors.FromError(err).Code)

	result, err := svc.SavePhoto("me.jpg", "image/jpeg", 64, strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/uploads/photo/"))
}
