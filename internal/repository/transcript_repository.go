package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/registrar-api/internal/models"
)

// TranscriptRepository handles persistence of transcript entries.
type TranscriptRepository struct {
	db *sqlx.DB
}

// NewTranscriptRepository constructs the repository.
func NewTranscriptRepository(db *sqlx.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

const transcriptColumns = `id, student_id, term_id, section_id, subject, course_number, title, credits, grade, status, sbc_fulfills`

// ListByStudent returns all transcript entries for a student, optionally
// narrowed by term and status.
func (r *TranscriptRepository) ListByStudent(ctx context.Context, studentID string, filter models.TranscriptFilter) ([]models.TranscriptEntry, error) {
	conditions := []string{"student_id = $1"}
	args := []interface{}{studentID}

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}

	query := fmt.Sprintf(`SELECT %s FROM transcript_entries WHERE %s ORDER BY term_id, subject, course_number`,
		transcriptColumns, strings.Join(conditions, " AND "))

	var entries []models.TranscriptEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list transcript entries: %w", err)
	}
	return entries, nil
}

// ListBySection returns the entries enrolled in a section.
func (r *TranscriptRepository) ListBySection(ctx context.Context, sectionID string) ([]models.TranscriptEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcript_entries WHERE section_id = $1 ORDER BY student_id`, transcriptColumns)
	var entries []models.TranscriptEntry
	if err := r.db.SelectContext(ctx, &entries, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section entries: %w", err)
	}
	return entries, nil
}

// BulkUpdateGrades applies all grade changes for one section in a single
// transaction. A change referencing an entry outside the section fails the
// whole batch. Returns the distinct student IDs whose transcripts changed.
func (r *TranscriptRepository) BulkUpdateGrades(ctx context.Context, sectionID string, changes []models.GradeChange) ([]string, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin grade update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE transcript_entries
SET grade = $1, status = $2
WHERE id = $3 AND section_id = $4
RETURNING student_id`

	seen := make(map[string]struct{}, len(changes))
	studentIDs := make([]string, 0, len(changes))
	for _, change := range changes {
		var studentID string
		if err := tx.GetContext(ctx, &studentID, query, change.Grade, models.EnrollmentStatusCompleted, change.EntryID, sectionID); err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("entry %s not found in section %s", change.EntryID, sectionID)
			}
			return nil, fmt.Errorf("update grade for entry %s: %w", change.EntryID, err)
		}
		if _, ok := seen[studentID]; !ok {
			seen[studentID] = struct{}{}
			studentIDs = append(studentIDs, studentID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grade update: %w", err)
	}
	return studentIDs, nil
}
