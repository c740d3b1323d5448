package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

type gradeWriter interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.TranscriptEntry, error)
	BulkUpdateGrades(ctx context.Context, sectionID string, changes []models.GradeChange) ([]string, error)
}

type progressInvalidator interface {
	InvalidateStudent(ctx context.Context, studentID string)
}

// BulkGradeRequest posts final grades for a section. The batch is atomic:
// one bad entry fails the whole submission.
type BulkGradeRequest struct {
	Changes []models.GradeChange `json:"changes" validate:"required,min=1,dive"`
}

// BulkGradeResult summarises an applied submission.
type BulkGradeResult struct {
	SectionID string   `json:"section_id"`
	Updated   int      `json:"updated"`
	Students  []string `json:"students"`
}

// GradebookService applies section grade submissions and keeps cached
// progress reports coherent with them.
type GradebookService struct {
	grades    gradeWriter
	progress  progressInvalidator
	scale     *models.GradeScale
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradebookService constructs the service.
func NewGradebookService(grades gradeWriter, progress progressInvalidator, scale *models.GradeScale, validate *validator.Validate, logger *zap.Logger) *GradebookService {
	if scale == nil {
		scale = models.DefaultGradeScale()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{grades: grades, progress: progress, scale: scale, validator: validate, logger: logger}
}

// Roster returns the section's current entries.
func (s *GradebookService) Roster(ctx context.Context, sectionID string) ([]models.TranscriptEntry, error) {
	entries, err := s.grades.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section roster")
	}
	return entries, nil
}

// SubmitGrades validates and applies all changes for a section in one
// transaction, then invalidates the affected students' cached progress.
func (s *GradebookService) SubmitGrades(ctx context.Context, sectionID string, req BulkGradeRequest) (*BulkGradeResult, error) {
	if sectionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section id required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	for _, change := range req.Changes {
		if !s.knownMark(change.Grade) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognized grade "+string(change.Grade))
		}
	}

	students, err := s.grades.BulkUpdateGrades(ctx, sectionID, req.Changes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "grade submission rejected")
	}

	if s.progress != nil {
		for _, studentID := range students {
			s.progress.InvalidateStudent(ctx, studentID)
		}
	}

	s.logger.Info("grades submitted",
		zap.String("section_id", sectionID),
		zap.Int("changes", len(req.Changes)),
		zap.Int("students", len(students)))

	return &BulkGradeResult{SectionID: sectionID, Updated: len(req.Changes), Students: students}, nil
}

// knownMark reports whether the mark belongs to the accepted vocabulary.
// Administrative marks are valid submissions even though the aggregator
// treats them as indeterminate.
func (s *GradebookService) knownMark(mark models.Mark) bool {
	class := s.scale.Classify(mark)
	if class.IsQualityPoint() || class.Passing {
		return true
	}
	switch mark {
	case models.MarkNP, models.MarkNC, models.MarkU,
		models.MarkI, models.MarkW, models.MarkWP, models.MarkWF, models.MarkIP:
		return true
	default:
		return false
	}
}
