package models

// EnrollmentStatus is the registration lifecycle state of a transcript entry.
type EnrollmentStatus string

// Possible enrollment statuses. Registered, enrolled and waitlisted entries
// count as in-progress when no grade has been posted yet.
const (
	EnrollmentStatusRegistered EnrollmentStatus = "REGISTERED"
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusWaitlisted EnrollmentStatus = "WAITLISTED"
	EnrollmentStatusWithdrawn  EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusCompleted  EnrollmentStatus = "COMPLETED"
)

// TranscriptEntry is one row of a student's transcript: a single course
// attempt in a single term. Entries are immutable snapshots as far as the
// rule engine is concerned; only the gradebook mutates them.
type TranscriptEntry struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	TermID       string           `db:"term_id" json:"term_id"`
	SectionID    string           `db:"section_id" json:"section_id"`
	Subject      string           `db:"subject" json:"subject"`
	CourseNumber string           `db:"course_number" json:"course_number"`
	Title        string           `db:"title" json:"title"`
	Credits      float64          `db:"credits" json:"credits"`
	Grade        *Mark            `db:"grade" json:"grade,omitempty"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	SBCFulfills  *string          `db:"sbc_fulfills" json:"sbc_fulfills,omitempty"`
}

// TranscriptSummary aggregates a transcript into earned credit and GPA.
// GPA is nil until the student has at least one credit-bearing
// quality-point mark.
type TranscriptSummary struct {
	CreditsCompleted float64  `json:"credits_completed"`
	CreditsAttempted float64  `json:"credits_attempted"`
	GPA              *float64 `json:"gpa"`
}

// CourseSummary is the course-level detail attached to requirement
// categories and degree audits.
type CourseSummary struct {
	Subject      string `json:"subject"`
	CourseNumber string `json:"course_number"`
	Title        string `json:"title"`
	Grade        *Mark  `json:"grade,omitempty"`
}

// RequirementCategory tracks one general-education (SBC) category.
// A category with no completed and no in-progress courses is neither
// completed nor in progress.
type RequirementCategory struct {
	Code              string          `json:"code"`
	Completed         bool            `json:"completed"`
	InProgress        bool            `json:"in_progress"`
	CompletedCourses  []CourseSummary `json:"completed_courses"`
	InProgressCourses []CourseSummary `json:"in_progress_courses"`
}

// GradeChange is one item of a bulk grade update for a section.
type GradeChange struct {
	EntryID string `json:"entry_id" validate:"required"`
	Grade   Mark   `json:"grade" validate:"required"`
}

// TranscriptFilter scopes transcript queries.
type TranscriptFilter struct {
	StudentID string
	TermID    string
	SectionID string
}
