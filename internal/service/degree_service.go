package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campusops/registrar-api/internal/models"
	appErrors "github.com/campusops/registrar-api/pkg/errors"
)

type programReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgram, error)
}

// MatchPolicy selects which attempt's grade is displayed when a student has
// completed a required course more than once.
type MatchPolicy string

const (
	// MatchLatest shows the most recent passing attempt.
	MatchLatest MatchPolicy = "latest"
	// MatchBest shows the passing attempt with the highest quality points.
	MatchBest MatchPolicy = "best"
	// MatchFirst shows the earliest passing attempt.
	MatchFirst MatchPolicy = "first"
)

// ParseMatchPolicy maps a config string to a policy, defaulting to latest.
func ParseMatchPolicy(raw string) MatchPolicy {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case MatchBest:
		return MatchBest
	case MatchFirst:
		return MatchFirst
	default:
		return MatchLatest
	}
}

// DegreeService evaluates declared-program requirement documents against a
// student's transcript.
type DegreeService struct {
	programs programReader
	entries  transcriptReader
	scale    *models.GradeScale
	policy   MatchPolicy
	logger   *zap.Logger
}

// NewDegreeService constructs the service.
func NewDegreeService(programs programReader, entries transcriptReader, scale *models.GradeScale, policy MatchPolicy, logger *zap.Logger) *DegreeService {
	if scale == nil {
		scale = models.DefaultGradeScale()
	}
	if policy == "" {
		policy = MatchLatest
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DegreeService{programs: programs, entries: entries, scale: scale, policy: policy, logger: logger}
}

// Audit evaluates every declared program for the student. Programs without
// a requirement document are skipped; a student with no declared programs
// gets an empty audit, not an error.
func (s *DegreeService) Audit(ctx context.Context, studentID string) ([]models.ProgramRequirementStatus, error) {
	programs, err := s.programs.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declared programs")
	}

	entries, err := s.entries.ListByStudent(ctx, studentID, models.TranscriptFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}

	statuses := make([]models.ProgramRequirementStatus, 0, len(programs))
	for _, program := range programs {
		if status := s.Match(program, entries); status != nil {
			statuses = append(statuses, *status)
		}
	}
	return statuses, nil
}

// Match evaluates one program's requirement document against transcript
// rows. Returns nil when the program has no document.
func (s *DegreeService) Match(program models.StudentProgram, entries []models.TranscriptEntry) *models.ProgramRequirementStatus {
	if program.Requirements == nil {
		return nil
	}

	status := &models.ProgramRequirementStatus{
		ProgramName: programDisplayName(program),
	}

	var earned float64
	for _, entry := range entries {
		if entry.Grade != nil && s.scale.Classify(*entry.Grade).Passing {
			earned += entry.Credits
		}
	}

	for _, node := range program.Requirements.Nodes {
		switch n := node.(type) {
		case models.RequiredCoursesNode:
			for _, course := range n.Courses {
				status.RequiredCourses = append(status.RequiredCourses, s.matchCourse(course, entries))
			}
		case models.SequenceNode:
			seq := models.SequenceStatus{Name: n.Name}
			for _, ref := range n.Courses {
				seq.Courses = append(seq.Courses, s.matchCourse(models.RequiredCourse{Subject: ref.Subject, CourseNumber: ref.CourseNumber}, entries))
			}
			status.Sequences = append(status.Sequences, seq)
		case models.CreditThresholdNode:
			status.CreditThresholds = append(status.CreditThresholds, models.CreditThresholdStatus{
				MinCredits: n.MinCredits,
				Earned:     earned,
				Satisfied:  earned >= n.MinCredits,
			})
		case models.ElectivesNode:
			// Echoed for display; elective satisfaction is not evaluated.
			status.Electives = append(status.Electives, n)
		}
	}
	return status
}

// matchCourse finds transcript rows matching the requirement exactly by
// subject and course number (string comparison, so "101H" never matches
// "101") and derives the requirement state from them.
func (s *DegreeService) matchCourse(course models.RequiredCourse, entries []models.TranscriptEntry) models.RequiredCourseStatus {
	result := models.RequiredCourseStatus{
		Subject:      course.Subject,
		CourseNumber: course.CourseNumber,
		MinGrade:     course.MinGrade,
	}

	var passing []models.TranscriptEntry
	for _, entry := range entries {
		if entry.Subject != course.Subject || entry.CourseNumber != course.CourseNumber {
			continue
		}
		if entry.Grade != nil && s.scale.Classify(*entry.Grade).Passing {
			passing = append(passing, entry)
			continue
		}
		if entryInProgress(entry) {
			result.InProgress = true
		}
	}

	if len(passing) > 0 {
		chosen := s.chooseAttempt(passing)
		result.Completed = true
		result.InProgress = false
		result.Grade = chosen.Grade
	}
	return result
}

// chooseAttempt picks the displayed attempt among passing matches.
// Transcript rows arrive in chronological term order, so "latest" is the
// last match and "first" the first.
func (s *DegreeService) chooseAttempt(passing []models.TranscriptEntry) models.TranscriptEntry {
	switch s.policy {
	case MatchFirst:
		return passing[0]
	case MatchBest:
		best := passing[0]
		bestPoints := s.qualityPoints(best)
		for _, candidate := range passing[1:] {
			if points := s.qualityPoints(candidate); points > bestPoints {
				best = candidate
				bestPoints = points
			}
		}
		return best
	default:
		return passing[len(passing)-1]
	}
}

func (s *DegreeService) qualityPoints(entry models.TranscriptEntry) float64 {
	if entry.Grade == nil {
		return -1
	}
	class := s.scale.Classify(*entry.Grade)
	if !class.IsQualityPoint() {
		return -1
	}
	return *class.QualityPoints
}

func programDisplayName(program models.StudentProgram) string {
	kind := "Major"
	if program.ProgramType == models.ProgramTypeMinor {
		kind = "Minor"
	}
	if program.DegreeType == "" {
		return fmt.Sprintf("%s %s", program.Subject, kind)
	}
	return fmt.Sprintf("%s %s %s", program.Subject, program.DegreeType, kind)
}
