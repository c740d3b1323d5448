package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
)

func TestWindowRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWindowRepository(db)

	rows := sqlmock.NewRows([]string{"id", "term_id", "class_standing", "credit_threshold", "starts_at"}).
		AddRow("win-1", "term-1", "U4", "100+", time.Now()).
		AddRow("win-2", "term-1", "U4", nil, time.Now().Add(time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, term_id, class_standing, credit_threshold, starts_at\nFROM registration_windows WHERE term_id = $1 ORDER BY starts_at, class_standing")).
		WithArgs("term-1").
		WillReturnRows(rows)

	windows, err := repo.ListByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	require.NotNil(t, windows[0].CreditThreshold)
	require.Nil(t, windows[1].CreditThreshold)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWindowRepositoryReplaceForTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWindowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registration_windows WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO registration_windows").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceForTerm(context.Background(), "term-1", []models.RegistrationWindow{
		{ClassStanding: models.StandingU4, StartsAt: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
