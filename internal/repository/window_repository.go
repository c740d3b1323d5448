package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/registrar-api/internal/models"
)

// WindowRepository handles persistence of registration windows.
type WindowRepository struct {
	db *sqlx.DB
}

// NewWindowRepository constructs the repository.
func NewWindowRepository(db *sqlx.DB) *WindowRepository {
	return &WindowRepository{db: db}
}

// ListByTerm returns every configured window for a term.
func (r *WindowRepository) ListByTerm(ctx context.Context, termID string) ([]models.RegistrationWindow, error) {
	const query = `SELECT id, term_id, class_standing, credit_threshold, starts_at
FROM registration_windows WHERE term_id = $1 ORDER BY starts_at, class_standing`
	var windows []models.RegistrationWindow
	if err := r.db.SelectContext(ctx, &windows, query, termID); err != nil {
		return nil, fmt.Errorf("list registration windows: %w", err)
	}
	return windows, nil
}

// ReplaceForTerm swaps the full window set for a term atomically.
func (r *WindowRepository) ReplaceForTerm(ctx context.Context, termID string, windows []models.RegistrationWindow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin window replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM registration_windows WHERE term_id = $1`, termID); err != nil {
		return fmt.Errorf("clear registration windows: %w", err)
	}

	const insert = `INSERT INTO registration_windows (id, term_id, class_standing, credit_threshold, starts_at)
VALUES (:id, :term_id, :class_standing, :credit_threshold, :starts_at)`
	for i := range windows {
		windows[i].TermID = termID
		if windows[i].ID == "" {
			windows[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insert, windows[i]); err != nil {
			return fmt.Errorf("insert registration window: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit window replace: %w", err)
	}
	return nil
}
