package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/registrar-api/internal/models"
)

type stubProgramReader struct {
	programs []models.StudentProgram
	err      error
}

func (s *stubProgramReader) ListByStudent(_ context.Context, _ string) ([]models.StudentProgram, error) {
	return s.programs, s.err
}

func csProgram(nodes ...models.RequirementNode) models.StudentProgram {
	return models.StudentProgram{
		ID:          "prog-1",
		StudentID:   "stu-1",
		ProgramType: models.ProgramTypeMajor,
		Subject:     "CSE",
		DegreeType:  "BS",
		Requirements: &models.DegreeRequirementDocument{
			Nodes: nodes,
		},
	}
}

func TestMatchPassingAttemptWinsOverFailedRetake(t *testing.T) {
	svc := NewDegreeService(nil, nil, nil, MatchLatest, nil)
	program := csProgram(models.RequiredCoursesNode{Courses: []models.RequiredCourse{
		{Subject: "CSE", CourseNumber: "214"},
	}})

	entries := []models.TranscriptEntry{
		entry("CSE", "214", 4, mark(models.MarkF), models.EnrollmentStatusCompleted),
		entry("CSE", "214", 4, mark(models.MarkBPlus), models.EnrollmentStatusCompleted),
	}

	status := svc.Match(program, entries)
	require.NotNil(t, status)
	require.Len(t, status.RequiredCourses, 1)
	course := status.RequiredCourses[0]
	assert.True(t, course.Completed)
	assert.False(t, course.InProgress)
	require.NotNil(t, course.Grade)
	assert.Equal(t, models.MarkBPlus, *course.Grade)

	// Record order must not matter.
	reversed := []models.TranscriptEntry{entries[1], entries[0]}
	status = svc.Match(program, reversed)
	assert.True(t, status.RequiredCourses[0].Completed)
	require.NotNil(t, status.RequiredCourses[0].Grade)
	assert.Equal(t, models.MarkBPlus, *status.RequiredCourses[0].Grade)
}

func TestMatchCourseNumberIsStringExact(t *testing.T) {
	svc := NewDegreeService(nil, nil, nil, MatchLatest, nil)
	program := csProgram(models.RequiredCoursesNode{Courses: []models.RequiredCourse{
		{Subject: "MAT", CourseNumber: "101"},
	}})

	status := svc.Match(program, []models.TranscriptEntry{
		entry("MAT", "101H", 3, mark(models.MarkA), models.EnrollmentStatusCompleted),
	})
	require.Len(t, status.RequiredCourses, 1)
	assert.False(t, status.RequiredCourses[0].Completed)
	assert.False(t, status.RequiredCourses[0].InProgress)
}

func TestMatchInProgressWithoutGrade(t *testing.T) {
	svc := NewDegreeService(nil, nil, nil, MatchLatest, nil)
	program := csProgram(models.RequiredCoursesNode{Courses: []models.RequiredCourse{
		{Subject: "CSE", CourseNumber: "316"},
	}})

	status := svc.Match(program, []models.TranscriptEntry{
		entry("CSE", "316", 3, nil, models.EnrollmentStatusWaitlisted),
	})
	course := status.RequiredCourses[0]
	assert.False(t, course.Completed)
	assert.True(t, course.InProgress)
	assert.Nil(t, course.Grade)
}

func TestMatchNilDocumentReturnsNil(t *testing.T) {
	svc := NewDegreeService(nil, nil, nil, MatchLatest, nil)
	program := csProgram()
	program.Requirements = nil
	assert.Nil(t, svc.Match(program, nil))
}

func TestMatchPolicies(t *testing.T) {
	program := csProgram(models.RequiredCoursesNode{Courses: []models.RequiredCourse{
		{Subject: "CSE", CourseNumber: "214"},
	}})
	entries := []models.TranscriptEntry{
		entry("CSE", "214", 4, mark(models.MarkC), models.EnrollmentStatusCompleted),
		entry("CSE", "214", 4, mark(models.MarkA), models.EnrollmentStatusCompleted),
		entry("CSE", "214", 4, mark(models.MarkB), models.EnrollmentStatusCompleted),
	}

	cases := []struct {
		policy MatchPolicy
		want   models.Mark
	}{
		{MatchLatest, models.MarkB},
		{MatchBest, models.MarkA},
		{MatchFirst, models.MarkC},
	}
	for _, tc := range cases {
		svc := NewDegreeService(nil, nil, nil, tc.policy, nil)
		status := svc.Match(program, entries)
		require.NotNil(t, status.RequiredCourses[0].Grade, tc.policy)
		assert.Equal(t, tc.want, *status.RequiredCourses[0].Grade, tc.policy)
	}
}

func TestParseMatchPolicy(t *testing.T) {
	assert.Equal(t, MatchLatest, ParseMatchPolicy(""))
	assert.Equal(t, MatchLatest, ParseMatchPolicy("nonsense"))
	assert.Equal(t, MatchBest, ParseMatchPolicy(" Best "))
	assert.Equal(t, MatchFirst, ParseMatchPolicy("FIRST"))
}

func TestMatchSequenceAndThreshold(t *testing.T) {
	svc := NewDegreeService(nil, nil, nil, MatchLatest, nil)
	program := csProgram(
		models.SequenceNode{Name: "Calculus", Courses: []models.CourseRef{
			{Subject: "AMS", CourseNumber: "151"},
			{Subject: "AMS", CourseNumber: "161"},
		}},
		models.CreditThresholdNode{MinCredits: 6},
		models.ElectivesNode{MinCredits: 9, Subjects: []string{"CSE"}, MinLevel: 300},
	)

	status := svc.Match(program, []models.TranscriptEntry{
		entry("AMS", "151", 3, mark(models.MarkB), models.EnrollmentStatusCompleted),
		entry("AMS", "161", 3, nil, models.EnrollmentStatusEnrolled),
	})

	require.Len(t, status.Sequences, 1)
	seq := status.Sequences[0]
	assert.Equal(t, "Calculus", seq.Name)
	require.Len(t, seq.Courses, 2)
	assert.True(t, seq.Courses[0].Completed)
	assert.True(t, seq.Courses[1].InProgress)

	require.Len(t, status.CreditThresholds, 1)
	assert.Equal(t, 3.0, status.CreditThresholds[0].Earned)
	assert.False(t, status.CreditThresholds[0].Satisfied)

	// Electives are echoed, never evaluated.
	require.Len(t, status.Electives, 1)
	assert.Equal(t, 9.0, status.Electives[0].MinCredits)
}

func TestAuditSkipsProgramsWithoutDocuments(t *testing.T) {
	noDoc := csProgram()
	noDoc.Requirements = nil
	minor := models.StudentProgram{
		ProgramType: models.ProgramTypeMinor,
		Subject:     "AMS",
		Requirements: &models.DegreeRequirementDocument{Nodes: []models.RequirementNode{
			models.RequiredCoursesNode{Courses: []models.RequiredCourse{{Subject: "AMS", CourseNumber: "151"}}},
		}},
	}
	programs := &stubProgramReader{programs: []models.StudentProgram{noDoc, minor}}
	entries := &stubTranscriptReader{entries: []models.TranscriptEntry{
		entry("AMS", "151", 3, mark(models.MarkA), models.EnrollmentStatusCompleted),
	}}

	svc := NewDegreeService(programs, entries, nil, MatchLatest, nil)
	statuses, err := svc.Audit(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "AMS Minor", statuses[0].ProgramName)
	assert.True(t, statuses[0].RequiredCourses[0].Completed)
}

func TestProgramDisplayName(t *testing.T) {
	assert.Equal(t, "CSE BS Major", programDisplayName(csProgram()))
	assert.Equal(t, "AMS Minor", programDisplayName(models.StudentProgram{
		ProgramType: models.ProgramTypeMinor,
		Subject:     "AMS",
	}))
}
