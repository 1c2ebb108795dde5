package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type mockNoteRepo struct {
	notes map[string]models.NoteDetail
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]models.NoteDetail)}
}

func (m *mockNoteRepo) List(_ context.Context, filter models.NoteFilter) ([]models.NoteDetail, error) {
	out := []models.NoteDetail{}
	for _, n := range m.notes {
		if filter.StudentID != "" && n.StudentID != filter.StudentID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNoteRepo) FindByID(_ context.Context, id string) (*models.NoteDetail, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &n, nil
}

func (m *mockNoteRepo) Create(_ context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = "n-" + note.StudentID
	}
	m.notes[note.ID] = models.NoteDetail{Note: *note}
	return nil
}

func (m *mockNoteRepo) Update(_ context.Context, note *models.Note) error {
	existing, ok := m.notes[note.ID]
	if !ok {
		return sql.ErrNoRows
	}
	existing.Note = *note
	m.notes[note.ID] = existing
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

const (
	testStudentID = "f4a9d9a2-1f6c-4f62-9c35-0d2f0f6b7e11"
	testCourseID  = "ab34cdef-5678-4abc-9def-1234567890ab"
)

func TestNoteServiceCreateRejectsOutOfRange(t *testing.T) {
	svc := NewNoteService(newMockNoteRepo(), nil, zap.NewNop())

	for _, value := range []float64{-1, 20.5, 100} {
		_, err := svc.Create(context.Background(), CreateNoteRequest{
			StudentID: testStudentID,
			CourseID:  testCourseID,
			Value:     value,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestNoteServiceCreateAcceptsBoundaryValues(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, nil, zap.NewNop())

	for _, value := range []float64{0, 10.5, 20} {
		note, err := svc.Create(context.Background(), CreateNoteRequest{
			StudentID: testStudentID,
			CourseID:  testCourseID,
			Value:     value,
			Label:     "quiz",
		})
		require.NoError(t, err)
		assert.Equal(t, value, note.Value)
	}
}

func TestNoteServiceCreateReadRoundTrip(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), CreateNoteRequest{
		StudentID: testStudentID,
		CourseID:  testCourseID,
		Value:     14.5,
		Label:     "midterm",
	})
	require.NoError(t, err)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Value, fetched.Value)
	assert.Equal(t, created.Label, fetched.Label)
	assert.Equal(t, created.StudentID, fetched.StudentID)
}

func TestNoteServiceUpdateRejectsOutOfRange(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), CreateNoteRequest{
		StudentID: testStudentID,
		CourseID:  testCourseID,
		Value:     12,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateNoteRequest{Value: 21})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNoteServiceDeleteThenGetNotFound(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), CreateNoteRequest{
		StudentID: testStudentID,
		CourseID:  testCourseID,
		Value:     9,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
