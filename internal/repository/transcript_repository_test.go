package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTranscriptRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "term_id", "section_id", "subject", "course_number", "title", "credits", "grade", "status", "sbc_fulfills"}).
		AddRow("ent-1", "stu-1", "term-1", "sec-1", "CSE", "214", "Data Structures", 4.0, "B+", models.EnrollmentStatusCompleted, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, term_id, section_id, subject, course_number, title, credits, grade, status, sbc_fulfills FROM transcript_entries WHERE student_id = $1 AND term_id = $2")).
		WithArgs("stu-1", "term-1").
		WillReturnRows(rows)

	entries, err := repo.ListByStudent(context.Background(), "stu-1", models.TranscriptFilter{TermID: "term-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.Mark("B+"), *entries[0].Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptRepositoryBulkUpdateGradesCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	mock.ExpectBegin()
	update := regexp.QuoteMeta("UPDATE transcript_entries\nSET grade = $1, status = $2\nWHERE id = $3 AND section_id = $4\nRETURNING student_id")
	mock.ExpectQuery(update).
		WithArgs(models.MarkA, models.EnrollmentStatusCompleted, "ent-1", "sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("stu-1"))
	mock.ExpectQuery(update).
		WithArgs(models.MarkB, models.EnrollmentStatusCompleted, "ent-2", "sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("stu-2"))
	mock.ExpectCommit()

	students, err := repo.BulkUpdateGrades(context.Background(), "sec-1", []models.GradeChange{
		{EntryID: "ent-1", Grade: models.MarkA},
		{EntryID: "ent-2", Grade: models.MarkB},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"stu-1", "stu-2"}, students)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptRepositoryBulkUpdateGradesRollsBackOnMiss(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	mock.ExpectBegin()
	update := regexp.QuoteMeta("UPDATE transcript_entries\nSET grade = $1, status = $2\nWHERE id = $3 AND section_id = $4\nRETURNING student_id")
	mock.ExpectQuery(update).
		WithArgs(models.MarkA, models.EnrollmentStatusCompleted, "ent-1", "sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("stu-1"))
	mock.ExpectQuery(update).
		WithArgs(models.MarkB, models.EnrollmentStatusCompleted, "ent-other", "sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))
	mock.ExpectRollback()

	_, err := repo.BulkUpdateGrades(context.Background(), "sec-1", []models.GradeChange{
		{EntryID: "ent-1", Grade: models.MarkA},
		{EntryID: "ent-other", Grade: models.MarkB},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ent-other")
	require.NoError(t, mock.ExpectationsWereMet())
}
