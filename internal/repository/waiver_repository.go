package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

// WaiverRepository handles persistence of time-conflict waivers.
type WaiverRepository struct {
	db *sqlx.DB
}

// NewWaiverRepository constructs the repository.
func NewWaiverRepository(db *sqlx.DB) *WaiverRepository {
	return &WaiverRepository{db: db}
}

const waiverColumns = `id, student_id,
first_subject AS "first_class.subject", first_course_number AS "first_class.course_number",
first_section_id AS "first_class.section_id", first_term_id AS "first_class.term_id",
second_subject AS "second_class.subject", second_course_number AS "second_class.course_number",
second_section_id AS "second_class.section_id", second_term_id AS "second_class.term_id",
instructor1_approved, instructor2_approved, advisor_approved, denied_by, denied_at, created_at`

// Create persists a new waiver in its initial pending state.
func (r *WaiverRepository) Create(ctx context.Context, waiver *models.TimeConflictWaiver) error {
	if waiver.ID == "" {
		waiver.ID = uuid.NewString()
	}
	if waiver.CreatedAt.IsZero() {
		waiver.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO time_conflict_waivers
(id, student_id, first_subject, first_course_number, first_section_id, first_term_id,
 second_subject, second_course_number, second_section_id, second_term_id,
 instructor1_approved, instructor2_approved, advisor_approved, denied_by, denied_at, created_at)
VALUES (:id, :student_id, :first_class.subject, :first_class.course_number, :first_class.section_id, :first_class.term_id,
 :second_class.subject, :second_class.course_number, :second_class.section_id, :second_class.term_id,
 :instructor1_approved, :instructor2_approved, :advisor_approved, :denied_by, :denied_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, waiver); err != nil {
		return fmt.Errorf("create waiver: %w", err)
	}
	return nil
}

// GetByID returns a waiver by its identifier.
func (r *WaiverRepository) GetByID(ctx context.Context, id string) (*models.TimeConflictWaiver, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_conflict_waivers WHERE id = $1`, waiverColumns)
	var waiver models.TimeConflictWaiver
	if err := r.db.GetContext(ctx, &waiver, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waiver not found")
		}
		return nil, fmt.Errorf("get waiver: %w", err)
	}
	return &waiver, nil
}

// List returns waivers matching the filter.
func (r *WaiverRepository) List(ctx context.Context, filter models.WaiverFilter) ([]models.TimeConflictWaiver, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("(first_term_id = $%d OR second_term_id = $%d)", len(args)+1, len(args)+1))
		args = append(args, filter.TermID)
	}
	switch filter.State {
	case models.WaiverStateDenied:
		conditions = append(conditions, "denied_by IS NOT NULL")
	case models.WaiverStateFullyApproved:
		conditions = append(conditions, "denied_by IS NULL AND instructor1_approved AND instructor2_approved AND advisor_approved")
	case models.WaiverStatePending:
		conditions = append(conditions, "denied_by IS NULL AND NOT (instructor1_approved AND instructor2_approved AND advisor_approved)")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM time_conflict_waivers%s ORDER BY created_at DESC`, waiverColumns, clause)
	var waivers []models.TimeConflictWaiver
	if err := r.db.SelectContext(ctx, &waivers, query, args...); err != nil {
		return nil, fmt.Errorf("list waivers: %w", err)
	}
	return waivers, nil
}

// Approve records one party's sign-off under a row lock. Approving a denied
// waiver fails; re-approving an already approved party is a no-op.
func (r *WaiverRepository) Approve(ctx context.Context, id string, party models.WaiverParty) (*models.TimeConflictWaiver, error) {
	column, err := partyColumn(party)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin waiver approve: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	waiver, err := lockWaiver(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if waiver.DeniedBy != nil {
		return nil, appErrors.ErrWaiverDenied
	}

	update := fmt.Sprintf(`UPDATE time_conflict_waivers SET %s = TRUE WHERE id = $1`, column)
	if _, err := tx.ExecContext(ctx, update, id); err != nil {
		return nil, fmt.Errorf("approve waiver: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit waiver approve: %w", err)
	}

	switch party {
	case models.WaiverPartyInstructor1:
		waiver.Instructor1Approved = true
	case models.WaiverPartyInstructor2:
		waiver.Instructor2Approved = true
	case models.WaiverPartyAdvisor:
		waiver.AdvisorApproved = true
	}
	return waiver, nil
}

// Deny records a terminal denial under a row lock. Denying twice fails, as
// does denying a fully approved waiver.
func (r *WaiverRepository) Deny(ctx context.Context, id string, party models.WaiverParty) (*models.TimeConflictWaiver, error) {
	if _, err := partyColumn(party); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin waiver deny: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	waiver, err := lockWaiver(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if waiver.DeniedBy != nil {
		return nil, appErrors.ErrWaiverDenied
	}
	if waiver.State() == models.WaiverStateFullyApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "waiver is already fully approved")
	}

	deniedAt := time.Now().UTC()
	const update = `UPDATE time_conflict_waivers SET denied_by = $2, denied_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, id, party, deniedAt); err != nil {
		return nil, fmt.Errorf("deny waiver: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit waiver deny: %w", err)
	}

	waiver.DeniedBy = &party
	waiver.DeniedAt = &deniedAt
	return waiver, nil
}

func lockWaiver(ctx context.Context, tx *sqlx.Tx, id string) (*models.TimeConflictWaiver, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_conflict_waivers WHERE id = $1 FOR UPDATE`, waiverColumns)
	var waiver models.TimeConflictWaiver
	if err := tx.GetContext(ctx, &waiver, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waiver not found")
		}
		return nil, fmt.Errorf("lock waiver: %w", err)
	}
	return &waiver, nil
}

func partyColumn(party models.WaiverParty) (string, error) {
	switch party {
	case models.WaiverPartyInstructor1:
		return "instructor1_approved", nil
	case models.WaiverPartyInstructor2:
		return "instructor2_approved", nil
	case models.WaiverPartyAdvisor:
		return "advisor_approved", nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown waiver party %q", party))
	}
}
