package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

type windowRepo interface {
	ListByTerm(ctx context.Context, termID string) ([]models.RegistrationWindow, error)
	ReplaceForTerm(ctx context.Context, termID string, windows []models.RegistrationWindow) error
}

// WindowUpsertItem is one window in a term's replacement payload.
type WindowUpsertItem struct {
	ClassStanding   models.ClassStanding    `json:"class_standing" validate:"required,oneof=U1 U2 U3 U4"`
	CreditThreshold *models.CreditThreshold `json:"credit_threshold,omitempty" validate:"omitempty,oneof=100+ below100"`
	StartsAt        time.Time               `json:"starts_at" validate:"required"`
}

// ReplaceWindowsRequest swaps a term's full window configuration.
type ReplaceWindowsRequest struct {
	Windows []WindowUpsertItem `json:"windows" validate:"required,dive"`
}

// ResolvedWindow is the resolver output for one student.
type ResolvedWindow struct {
	StudentID     string                     `json:"student_id"`
	TermID        string                     `json:"term_id"`
	ClassStanding models.ClassStanding       `json:"class_standing"`
	EarnedCredits float64                    `json:"earned_credits"`
	Window        *models.RegistrationWindow `json:"window"`
}

// RegistrationService resolves which registration window applies to a
// student and manages a term's window configuration.
type RegistrationService struct {
	windows   windowRepo
	entries   transcriptReader
	scale     *models.GradeScale
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(windows windowRepo, entries transcriptReader, scale *models.GradeScale, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if scale == nil {
		scale = models.DefaultGradeScale()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{windows: windows, entries: entries, scale: scale, validator: validate, logger: logger}
}

// ListWindows returns a term's configured windows.
func (s *RegistrationService) ListWindows(ctx context.Context, termID string) ([]models.RegistrationWindow, error) {
	windows, err := s.windows.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registration windows")
	}
	return windows, nil
}

// ReplaceWindows swaps the configured windows for a term.
func (s *RegistrationService) ReplaceWindows(ctx context.Context, termID string, req ReplaceWindowsRequest) ([]models.RegistrationWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid window payload")
	}

	windows := make([]models.RegistrationWindow, 0, len(req.Windows))
	for _, item := range req.Windows {
		windows = append(windows, models.RegistrationWindow{
			TermID:          termID,
			ClassStanding:   item.ClassStanding,
			CreditThreshold: item.CreditThreshold,
			StartsAt:        item.StartsAt,
		})
	}

	if err := s.windows.ReplaceForTerm(ctx, termID, windows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace registration windows")
	}
	return s.ListWindows(ctx, termID)
}

// ResolveForStudent loads a student's earned credits and resolves their
// window for the term. A nil window means none is configured for them,
// which is a valid state rather than an error.
func (s *RegistrationService) ResolveForStudent(ctx context.Context, studentID, termID string, standing models.ClassStanding) (*ResolvedWindow, error) {
	entries, err := s.entries.ListByStudent(ctx, studentID, models.TranscriptFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}

	var earned float64
	for _, entry := range entries {
		if entry.Grade != nil && s.scale.Classify(*entry.Grade).Passing {
			earned += entry.Credits
		}
	}

	windows, err := s.windows.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registration windows")
	}

	return &ResolvedWindow{
		StudentID:     studentID,
		TermID:        termID,
		ClassStanding: standing,
		EarnedCredits: earned,
		Window:        Resolve(windows, standing, earned),
	}, nil
}

// Resolve picks the window that applies to a student. Windows are first
// narrowed to the student's standing; among those, a thresholded window
// whose credit condition holds beats the unconditional one. Returns nil
// when nothing matches, including for unrecognized standings.
func Resolve(windows []models.RegistrationWindow, standing models.ClassStanding, earnedCredits float64) *models.RegistrationWindow {
	if standing.Rank() == 0 {
		return nil
	}

	var fallback *models.RegistrationWindow
	for i := range windows {
		window := &windows[i]
		if window.ClassStanding != standing {
			continue
		}
		if window.CreditThreshold == nil {
			if fallback == nil {
				fallback = window
			}
			continue
		}
		if window.CreditThreshold.Satisfied(earnedCredits) {
			return window
		}
	}
	return fallback
}
