package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/pkg/config"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type mockFeedParents struct {
	parents map[string]models.Parent
	err     error
}

func (m *mockFeedParents) FindByUserID(_ context.Context, userID string) (*models.Parent, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.parents[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

type mockFeedStudents struct {
	children map[string][]models.Student
	err      error
}

func (m *mockFeedStudents) FindByParent(_ context.Context, parentID string) ([]models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.children[parentID], nil
}

type mockFeedNotes struct {
	notes map[string][]models.NoteDetail
	err   error
}

func (m *mockFeedNotes) List(_ context.Context, filter models.NoteFilter) ([]models.NoteDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.notes[filter.StudentID], nil
}

type mockFeedAbsences struct {
	absences map[string][]models.AbsenceDetail
	err      error
}

func (m *mockFeedAbsences) List(_ context.Context, filter models.AbsenceFilter) ([]models.AbsenceDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.absences[filter.StudentID], nil
}

type mockFeedInvoices struct {
	invoices []models.Invoice
	err      error
}

func (m *mockFeedInvoices) List(_ context.Context, _ models.InvoiceFilter) ([]models.Invoice, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.invoices, len(m.invoices), nil
}

func feedConfig() config.NotificationsConfig {
	return config.NotificationsConfig{
		CacheTTL:       5 * time.Minute,
		AbsenceWindow:  48 * time.Hour,
		GoodNoteMin:    16,
		ConcernNoteMax: 10,
	}
}

func newFeedService(students *mockFeedStudents, notes *mockFeedNotes, absences *mockFeedAbsences, invoices *mockFeedInvoices) *NotificationService {
	return NewNotificationService(
		&mockFeedParents{parents: map[string]models.Parent{}},
		students, notes, absences, invoices,
		nil, NewMetricsService(), feedConfig(), zap.NewNop(),
	)
}

func TestNotificationFeedClassifiesConcerningNote(t *testing.T) {
	child := models.Student{ID: "s1", FullName: "Max Doe", ParentID: ptr("p1")}
	students := &mockFeedStudents{children: map[string][]models.Student{"p1": {child}}}
	notes := &mockFeedNotes{notes: map[string][]models.NoteDetail{
		"s1": {{
			Note:          models.Note{ID: "n1", StudentID: "s1", CourseID: "c1", Value: 8, CreatedAt: time.Now()},
			CourseSubject: "Math",
		}},
	}}
	absences := &mockFeedAbsences{absences: map[string][]models.AbsenceDetail{}}
	invoices := &mockFeedInvoices{}

	svc := newFeedService(students, notes, absences, invoices)

	feed, cacheHit, err := svc.Feed(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, models.FeedComplete, feed.Status)
	require.Len(t, feed.Entries, 1)
	entry := feed.Entries[0]
	assert.Equal(t, models.NotificationConcernNote, entry.Kind)
	assert.Equal(t, models.PriorityHigh, entry.Priority)
	assert.Equal(t, "s1", entry.StudentID)
	assert.Equal(t, "c1", entry.CourseID)
	assert.Equal(t, "Math", entry.Subject)
}

func TestNotificationFeedSkipsMidRangeNotes(t *testing.T) {
	child := models.Student{ID: "s1", FullName: "Max Doe"}
	students := &mockFeedStudents{children: map[string][]models.Student{"p1": {child}}}
	notes := &mockFeedNotes{notes: map[string][]models.NoteDetail{
		"s1": {
			{Note: models.Note{ID: "n1", StudentID: "s1", Value: 12, CreatedAt: time.Now()}},
			{Note: models.Note{ID: "n2", StudentID: "s1", Value: 17, CreatedAt: time.Now()}},
		},
	}}
	absences := &mockFeedAbsences{absences: map[string][]models.AbsenceDetail{}}
	invoices := &mockFeedInvoices{}

	svc := newFeedService(students, notes, absences, invoices)

	feed, _, err := svc.Feed(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, models.NotificationGoodNote, feed.Entries[0].Kind)
	assert.Equal(t, models.PriorityLow, feed.Entries[0].Priority)
}

func TestNotificationFeedPartialWhenSourceFails(t *testing.T) {
	child := models.Student{ID: "s1", FullName: "Max Doe"}
	students := &mockFeedStudents{children: map[string][]models.Student{"p1": {child}}}
	notes := &mockFeedNotes{notes: map[string][]models.NoteDetail{}}
	absences := &mockFeedAbsences{err: errors.New("db down")}
	invoices := &mockFeedInvoices{}

	svc := newFeedService(students, notes, absences, invoices)

	feed, _, err := svc.Feed(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.FeedPartial, feed.Status)
	assert.Equal(t, 1, feed.FailedSources)
	assert.Empty(t, feed.Entries)
}

func TestNotificationFeedOrdersByPriorityThenRecency(t *testing.T) {
	now := time.Now()
	child := models.Student{ID: "s1", FullName: "Max Doe"}
	students := &mockFeedStudents{children: map[string][]models.Student{"p1": {child}}}
	notes := &mockFeedNotes{notes: map[string][]models.NoteDetail{
		"s1": {
			{Note: models.Note{ID: "n1", StudentID: "s1", Value: 18, CreatedAt: now}},
			{Note: models.Note{ID: "n2", StudentID: "s1", Value: 4, CreatedAt: now.Add(-time.Hour)}},
		},
	}}
	absences := &mockFeedAbsences{absences: map[string][]models.AbsenceDetail{
		"s1": {{Absence: models.Absence{ID: "a1", StudentID: "s1", Date: now.Add(-2 * time.Hour), Justified: false}}},
	}}
	invoices := &mockFeedInvoices{invoices: []models.Invoice{
		{ID: "i1", StudentID: "s1", Label: "Tuition", Status: models.InvoiceStatusPending, DueDate: now.Add(24 * time.Hour)},
	}}

	svc := newFeedService(students, notes, absences, invoices)

	feed, _, err := svc.Feed(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, feed.Entries, 4)

	// high before medium before low; within high, most recent first
	assert.Equal(t, models.PriorityHigh, feed.Entries[0].Priority)
	assert.Equal(t, models.PriorityHigh, feed.Entries[1].Priority)
	assert.Equal(t, models.NotificationConcernNote, feed.Entries[0].Kind)
	assert.Equal(t, models.NotificationAbsence, feed.Entries[1].Kind)
	assert.Equal(t, models.PriorityMedium, feed.Entries[2].Priority)
	assert.Equal(t, models.NotificationUnpaidInvoice, feed.Entries[2].Kind)
	assert.Equal(t, models.PriorityLow, feed.Entries[3].Priority)
}

func ptr(s string) *string { return &s }

func TestNotificationFeedForUserDistinguishesLookupFailures(t *testing.T) {
	userID := "u1"
	empty := newFeedService(&mockFeedStudents{}, &mockFeedNotes{}, &mockFeedAbsences{}, &mockFeedInvoices{})

	_, _, err := empty.FeedForUser(context.Background(), userID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	broken := NewNotificationService(
		&mockFeedParents{err: errors.New("connection refused")},
		&mockFeedStudents{}, &mockFeedNotes{}, &mockFeedAbsences{}, &mockFeedInvoices{},
		nil, NewMetricsService(), feedConfig(), zap.NewNop(),
	)

	_, _, err = broken.FeedForUser(context.Background(), userID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
