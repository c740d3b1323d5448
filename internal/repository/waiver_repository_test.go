package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

func waiverRows(deniedBy interface{}, i1, i2, adv bool) *sqlmock.Rows {
	var deniedAt interface{}
	if deniedBy != nil {
		deniedAt = time.Now()
	}
	return sqlmock.NewRows([]string{
		"id", "student_id",
		"first_class.subject", "first_class.course_number", "first_class.section_id", "first_class.term_id",
		"second_class.subject", "second_class.course_number", "second_class.section_id", "second_class.term_id",
		"instructor1_approved", "instructor2_approved", "advisor_approved", "denied_by", "denied_at", "created_at",
	}).AddRow("wvr-1", "stu-1",
		"CSE", "310", "sec-1", "term-1",
		"AMS", "310", "sec-2", "term-1",
		i1, i2, adv, deniedBy, deniedAt, time.Now())
}

func TestWaiverRepositoryApproveSetsFlag(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaiverRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM time_conflict_waivers WHERE id = \\$1 FOR UPDATE").
		WithArgs("wvr-1").
		WillReturnRows(waiverRows(nil, true, false, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_conflict_waivers SET instructor2_approved = TRUE WHERE id = $1")).
		WithArgs("wvr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	waiver, err := repo.Approve(context.Background(), "wvr-1", models.WaiverPartyInstructor2)
	require.NoError(t, err)
	require.True(t, waiver.Instructor2Approved)
	require.Equal(t, models.WaiverStatePending, waiver.State())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaiverRepositoryApproveDeniedFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaiverRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM time_conflict_waivers WHERE id = \\$1 FOR UPDATE").
		WithArgs("wvr-1").
		WillReturnRows(waiverRows(string(models.WaiverPartyAdvisor), true, true, false))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), "wvr-1", models.WaiverPartyInstructor1)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrWaiverDenied))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaiverRepositoryDenyIsTerminal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaiverRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM time_conflict_waivers WHERE id = \\$1 FOR UPDATE").
		WithArgs("wvr-1").
		WillReturnRows(waiverRows(nil, true, false, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_conflict_waivers SET denied_by = $2, denied_at = $3 WHERE id = $1")).
		WithArgs("wvr-1", models.WaiverPartyAdvisor, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	waiver, err := repo.Deny(context.Background(), "wvr-1", models.WaiverPartyAdvisor)
	require.NoError(t, err)
	require.Equal(t, models.WaiverStateDenied, waiver.State())
	require.NotNil(t, waiver.DeniedAt)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM time_conflict_waivers WHERE id = \\$1 FOR UPDATE").
		WithArgs("wvr-1").
		WillReturnRows(waiverRows(string(models.WaiverPartyAdvisor), true, false, false))
	mock.ExpectRollback()

	_, err = repo.Deny(context.Background(), "wvr-1", models.WaiverPartyInstructor1)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrWaiverDenied))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaiverRepositoryUnknownParty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaiverRepository(db)

	_, err := repo.Approve(context.Background(), "wvr-1", models.WaiverParty("DEAN"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
