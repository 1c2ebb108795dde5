package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnup-app/learnup-api/internal/models"
)

func newReminderMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReminderRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newReminderMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "text", "type", "class_group", "teacher_id", "done", "created_at", "updated_at"}).
		AddRow("r1", "Grade the quizzes", "task", "6A", "t1", false, time.Now(), time.Now())
	mock.ExpectQuery("SELECT r.id, r.text, r.type, r.class_group, r.teacher_id, r.done").
		WithArgs("t1").
		WillReturnRows(rows)

	reminders, err := repo.List(context.Background(), models.ReminderFilter{TeacherID: "t1"})
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.False(t, reminders[0].Done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositorySetDone(t *testing.T) {
	db, mock, cleanup := newReminderMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reminders SET done = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("r1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetDone(context.Background(), "r1", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositorySetDoneMissing(t *testing.T) {
	db, mock, cleanup := newReminderMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reminders SET done = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("missing", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetDone(context.Background(), "missing", true)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
