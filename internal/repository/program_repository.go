package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/registrar-api/internal/models"
)

// ProgramRepository handles persistence of student program declarations.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// ListByStudent returns the programs a student has declared, majors first.
func (r *ProgramRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgram, error) {
	const query = `SELECT id, student_id, program_type, subject, degree_type, requirements
FROM student_programs WHERE student_id = $1 ORDER BY program_type, subject`
	var programs []models.StudentProgram
	if err := r.db.SelectContext(ctx, &programs, query, studentID); err != nil {
		return nil, fmt.Errorf("list student programs: %w", err)
	}
	return programs, nil
}
