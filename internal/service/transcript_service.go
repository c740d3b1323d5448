package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

type transcriptReader interface {
	ListByStudent(ctx context.Context, studentID string, filter models.TranscriptFilter) ([]models.TranscriptEntry, error)
}

// ProgressReport bundles everything an advisor sees on one screen: the
// credit/GPA summary plus the general-education category state.
type ProgressReport struct {
	StudentID   string                       `json:"student_id"`
	Summary     models.TranscriptSummary     `json:"summary"`
	Categories  []models.RequirementCategory `json:"categories"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// TranscriptService folds transcript rows into GPA, credit totals and
// requirement-category state.
type TranscriptService struct {
	entries  transcriptReader
	scale    *models.GradeScale
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTranscriptService constructs the service. A nil scale falls back to
// the standard 4.0 scale.
func NewTranscriptService(entries transcriptReader, scale *models.GradeScale, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *TranscriptService {
	if scale == nil {
		scale = models.DefaultGradeScale()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{entries: entries, scale: scale, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// List returns raw transcript rows for a student.
func (s *TranscriptService) List(ctx context.Context, studentID string, filter models.TranscriptFilter) ([]models.TranscriptEntry, error) {
	entries, err := s.entries.ListByStudent(ctx, studentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}
	return entries, nil
}

// Summary aggregates a student's transcript into credit totals and GPA.
func (s *TranscriptService) Summary(ctx context.Context, studentID string) (*models.TranscriptSummary, error) {
	entries, err := s.List(ctx, studentID, models.TranscriptFilter{})
	if err != nil {
		return nil, err
	}
	summary := s.Aggregate(entries)
	return &summary, nil
}

// Progress assembles the full progress report, served from cache when warm.
func (s *TranscriptService) Progress(ctx context.Context, studentID string) (*ProgressReport, error) {
	cacheKey := progressCacheKey(studentID)
	if s.cache.Enabled() {
		var cached ProgressReport
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	entries, err := s.List(ctx, studentID, models.TranscriptFilter{})
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{
		StudentID:   studentID,
		Summary:     s.Aggregate(entries),
		Categories:  s.Categories(entries, nil),
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
			s.logger.Warn("progress cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return report, nil
}

// InvalidateStudent drops any cached progress for the student.
func (s *TranscriptService) InvalidateStudent(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, progressCacheKey(studentID)); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

// Aggregate folds transcript rows into earned credit and GPA. Rows without
// a posted grade contribute nothing. Only quality-point marks enter the
// GPA denominator; pass/fail marks earn credit without affecting GPA.
// The result is independent of row order.
func (s *TranscriptService) Aggregate(entries []models.TranscriptEntry) models.TranscriptSummary {
	var summary models.TranscriptSummary
	var numerator float64

	for _, entry := range entries {
		if entry.Credits <= 0 || entry.Grade == nil {
			continue
		}
		class := s.scale.Classify(*entry.Grade)
		if class.Passing {
			summary.CreditsCompleted += entry.Credits
		}
		if class.IsQualityPoint() {
			numerator += entry.Credits * *class.QualityPoints
			summary.CreditsAttempted += entry.Credits
		}
	}

	if summary.CreditsAttempted > 0 {
		gpa := math.Round(numerator/summary.CreditsAttempted*1000) / 1000
		summary.GPA = &gpa
	}
	return summary
}

// Categories tracks general-education (SBC) requirement categories across
// the transcript. A category is completed when any passing course carries
// it and in progress when any currently enrolled course carries it.
// When categoryCodes is non-empty the result has one entry per code in
// that order and codes outside the list are ignored; when empty, the
// categories observed on the transcript are returned sorted by code.
func (s *TranscriptService) Categories(entries []models.TranscriptEntry, categoryCodes []string) []models.RequirementCategory {
	byCode := make(map[string]*models.RequirementCategory)
	var order []string

	for _, code := range categoryCodes {
		if _, ok := byCode[code]; ok {
			continue
		}
		byCode[code] = &models.RequirementCategory{
			Code:              code,
			CompletedCourses:  []models.CourseSummary{},
			InProgressCourses: []models.CourseSummary{},
		}
		order = append(order, code)
	}
	pinned := len(order) > 0

	touch := func(code string) *models.RequirementCategory {
		if cat, ok := byCode[code]; ok {
			return cat
		}
		if pinned {
			return nil
		}
		cat := &models.RequirementCategory{
			Code:              code,
			CompletedCourses:  []models.CourseSummary{},
			InProgressCourses: []models.CourseSummary{},
		}
		byCode[code] = cat
		order = append(order, code)
		return cat
	}

	for _, entry := range entries {
		codes := parseCategoryCodes(entry.SBCFulfills)
		if len(codes) == 0 {
			continue
		}

		course := models.CourseSummary{
			Subject:      entry.Subject,
			CourseNumber: entry.CourseNumber,
			Title:        entry.Title,
			Grade:        entry.Grade,
		}

		passed := entry.Grade != nil && s.scale.Classify(*entry.Grade).Passing
		inProgress := entryInProgress(entry)

		for _, code := range codes {
			cat := touch(code)
			if cat == nil {
				continue
			}
			if passed {
				cat.Completed = true
				cat.CompletedCourses = append(cat.CompletedCourses, course)
			} else if inProgress {
				cat.InProgress = true
				cat.InProgressCourses = append(cat.InProgressCourses, course)
			}
		}
	}

	if !pinned {
		sort.Strings(order)
	}

	categories := make([]models.RequirementCategory, 0, len(order))
	for _, code := range order {
		categories = append(categories, *byCode[code])
	}
	return categories
}

// parseCategoryCodes splits an SBC annotation like
// "Partially fulfills: ARTS, HUM" into its category codes. The prefix is
// optional and case-insensitive; blank segments are dropped.
func parseCategoryCodes(raw *string) []string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}

	const prefix = "partially fulfills:"
	if len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
		value = value[len(prefix):]
	}

	parts := strings.Split(value, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		code := strings.TrimSpace(part)
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// entryInProgress reports whether the row represents current enrollment.
// Status comparison is case-insensitive; a posted grade always wins over
// the enrollment status.
func entryInProgress(entry models.TranscriptEntry) bool {
	if entry.Grade != nil {
		return false
	}
	switch models.EnrollmentStatus(strings.ToUpper(string(entry.Status))) {
	case models.EnrollmentStatusRegistered, models.EnrollmentStatusEnrolled, models.EnrollmentStatusWaitlisted:
		return true
	default:
		return false
	}
}

func progressCacheKey(studentID string) string {
	return fmt.Sprintf("progress:student:%s", studentID)
}
