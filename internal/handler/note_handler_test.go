package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/middleware"
	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
)

type noteRepoMock struct {
	notes map[string]models.NoteDetail
}

func newNoteRepoMock() *noteRepoMock {
	return &noteRepoMock{notes: map[string]models.NoteDetail{}}
}

func (m *noteRepoMock) List(ctx context.Context, filter models.NoteFilter) ([]models.NoteDetail, error) {
	out := []models.NoteDetail{}
	for _, n := range m.notes {
		if filter.StudentID != "" && n.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && n.CourseID != filter.CourseID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *noteRepoMock) FindByID(ctx context.Context, id string) (*models.NoteDetail, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &n, nil
}

func (m *noteRepoMock) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	m.notes[note.ID] = models.NoteDetail{Note: *note}
	return nil
}

func (m *noteRepoMock) Update(ctx context.Context, note *models.Note) error {
	if _, ok := m.notes[note.ID]; !ok {
		return sql.ErrNoRows
	}
	m.notes[note.ID] = models.NoteDetail{Note: *note}
	return nil
}

func (m *noteRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

type parentRepoMock struct {
	parents map[string]models.Parent
}

func (m *parentRepoMock) List(ctx context.Context) ([]models.Parent, error) {
	out := []models.Parent{}
	for _, p := range m.parents {
		out = append(out, p)
	}
	return out, nil
}

func (m *parentRepoMock) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	p, ok := m.parents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *parentRepoMock) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	for _, p := range m.parents {
		if p.UserID != nil && *p.UserID == userID {
			parent := p
			return &parent, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *parentRepoMock) Create(ctx context.Context, parent *models.Parent) error {
	if parent.ID == "" {
		parent.ID = uuid.NewString()
	}
	m.parents[parent.ID] = *parent
	return nil
}

func (m *parentRepoMock) Update(ctx context.Context, parent *models.Parent) error {
	if _, ok := m.parents[parent.ID]; !ok {
		return sql.ErrNoRows
	}
	m.parents[parent.ID] = *parent
	return nil
}

func (m *parentRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.parents[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.parents, id)
	return nil
}

type studentRepoMock struct {
	students map[string]models.Student
}

func (m *studentRepoMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := []models.Student{}
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *studentRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *studentRepoMock) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, s := range m.students {
		if s.UserID != nil && *s.UserID == userID {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *studentRepoMock) FindByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range m.students {
		if s.ParentID != nil && *s.ParentID == parentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *studentRepoMock) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	m.students[student.ID] = *student
	return nil
}

func (m *studentRepoMock) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *studentRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

type noteHandlerFixture struct {
	handler  *NoteHandler
	notes    *noteRepoMock
	parents  *parentRepoMock
	students *studentRepoMock
}

func newNoteHandlerFixture() *noteHandlerFixture {
	notes := newNoteRepoMock()
	parents := &parentRepoMock{parents: map[string]models.Parent{}}
	students := &studentRepoMock{students: map[string]models.Student{}}

	noteSvc := service.NewNoteService(notes, nil, zap.NewNop())
	parentSvc := service.NewParentService(parents, students, nil, zap.NewNop())
	studentSvc := service.NewStudentService(students, nil, zap.NewNop())

	return &noteHandlerFixture{
		handler:  NewNoteHandler(noteSvc, parentSvc, studentSvc),
		notes:    notes,
		parents:  parents,
		students: students,
	}
}

func TestNoteHandlerCreateRejectsOutOfRangeGrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := fmt.Sprintf(`{"student_id":%q,"course_id":%q,"value":25}`, uuid.NewString(), uuid.NewString())
	req, _ := http.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "Mme Dupont", models.RoleTeacher)

	fx.handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fx.notes.notes)
}

func TestNoteHandlerCreateAcceptsValidGrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := fmt.Sprintf(`{"student_id":%q,"course_id":%q,"value":14.5,"label":"Dictation"}`, uuid.NewString(), uuid.NewString())
	req, _ := http.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "Mme Dupont", models.RoleTeacher)

	fx.handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, fx.notes.notes, 1)
}

func TestNoteHandlerListParentCannotReadOtherStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	parentUserID := uuid.NewString()
	fx.parents.parents["p1"] = models.Parent{ID: "p1", UserID: &parentUserID, FullName: "M. Martin"}
	parentID := "p1"
	fx.students.students["s1"] = models.Student{ID: "s1", FullName: "Lea Martin", ParentID: &parentID}
	fx.students.students["s2"] = models.Student{ID: "s2", FullName: "Tom Petit"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notes?student_id=s2", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: parentUserID, FullName: "M. Martin", Role: models.RoleParent})

	fx.handler.List(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoteHandlerListParentAggregatesChildren(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	parentUserID := uuid.NewString()
	fx.parents.parents["p1"] = models.Parent{ID: "p1", UserID: &parentUserID}
	parentID := "p1"
	fx.students.students["s1"] = models.Student{ID: "s1", ParentID: &parentID}
	fx.students.students["s2"] = models.Student{ID: "s2", ParentID: &parentID}
	fx.students.students["other"] = models.Student{ID: "other"}

	fx.notes.notes["n1"] = models.NoteDetail{Note: models.Note{ID: "n1", StudentID: "s1", Value: 12}}
	fx.notes.notes["n2"] = models.NoteDetail{Note: models.Note{ID: "n2", StudentID: "s2", Value: 18}}
	fx.notes.notes["n3"] = models.NoteDetail{Note: models.Note{ID: "n3", StudentID: "other", Value: 5}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notes", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: parentUserID, Role: models.RoleParent})

	fx.handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.NoteDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	for _, n := range envelope.Data {
		assert.NotEqual(t, "other", n.StudentID)
	}
}

func TestNoteHandlerListStudentSeesOnlyOwnNotes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	studentUserID := uuid.NewString()
	fx.students.students["s1"] = models.Student{ID: "s1", UserID: &studentUserID, FullName: "Lea Martin"}
	fx.students.students["s2"] = models.Student{ID: "s2", FullName: "Tom Petit"}
	fx.notes.notes["n1"] = models.NoteDetail{Note: models.Note{ID: "n1", StudentID: "s1", Value: 15}}
	fx.notes.notes["n2"] = models.NoteDetail{Note: models.Note{ID: "n2", StudentID: "s2", Value: 9}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notes", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent})

	fx.handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.NoteDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "s1", envelope.Data[0].StudentID)
}

func TestNoteHandlerListStudentCannotFilterOtherStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	studentUserID := uuid.NewString()
	fx.students.students["s1"] = models.Student{ID: "s1", UserID: &studentUserID}
	fx.students.students["s2"] = models.Student{ID: "s2"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notes?student_id=s2", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent})

	fx.handler.List(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoteHandlerGetParentBlockedForUnlinkedStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	parentUserID := uuid.NewString()
	fx.parents.parents["p1"] = models.Parent{ID: "p1", UserID: &parentUserID}
	parentID := "p1"
	fx.students.students["s1"] = models.Student{ID: "s1", ParentID: &parentID}
	fx.students.students["s2"] = models.Student{ID: "s2"}
	fx.notes.notes["n2"] = models.NoteDetail{Note: models.Note{ID: "n2", StudentID: "s2", Value: 11}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notes/n2", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "n2"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: parentUserID, Role: models.RoleParent})

	fx.handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoteHandlerGetStudentOwnNote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := newNoteHandlerFixture()

	studentUserID := uuid.NewString()
	fx.students.students["s1"] = models.Student{ID: "s1", UserID: &studentUserID}
	fx.notes.notes["n1"] = models.NoteDetail{Note: models.Note{ID: "n1", StudentID: "s1", Value: 16}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notes/n1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent})

	fx.handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
}
