package models

import "time"

// WaiverParty identifies one of the three sign-off roles on a waiver.
type WaiverParty string

const (
	WaiverPartyInstructor1 WaiverParty = "INSTRUCTOR1"
	WaiverPartyInstructor2 WaiverParty = "INSTRUCTOR2"
	WaiverPartyAdvisor     WaiverParty = "ADVISOR"
)

// Valid reports whether the party is one of the three known sign-offs.
func (p WaiverParty) Valid() bool {
	switch p {
	case WaiverPartyInstructor1, WaiverPartyInstructor2, WaiverPartyAdvisor:
		return true
	default:
		return false
	}
}

// WaiverState is the aggregate lifecycle state of a waiver.
type WaiverState string

const (
	WaiverStatePending       WaiverState = "PENDING"
	WaiverStateFullyApproved WaiverState = "FULLY_APPROVED"
	WaiverStateDenied        WaiverState = "DENIED"
)

// ClassReference points at one course section in one term.
type ClassReference struct {
	Subject      string `db:"subject" json:"subject"`
	CourseNumber string `db:"course_number" json:"course_number"`
	SectionID    string `db:"section_id" json:"section_id"`
	TermID       string `db:"term_id" json:"term_id"`
}

// TimeConflictWaiver permits a student to enroll in two time-overlapping
// sections once both instructors and an advisor sign off. Denial by any
// single party is terminal; resubmission means a new waiver.
type TimeConflictWaiver struct {
	ID                  string         `db:"id" json:"id"`
	StudentID           string         `db:"student_id" json:"student_id"`
	FirstClass          ClassReference `db:"first_class" json:"first_class"`
	SecondClass         ClassReference `db:"second_class" json:"second_class"`
	Instructor1Approved bool           `db:"instructor1_approved" json:"instructor1_approved"`
	Instructor2Approved bool           `db:"instructor2_approved" json:"instructor2_approved"`
	AdvisorApproved     bool           `db:"advisor_approved" json:"advisor_approved"`
	DeniedBy            *WaiverParty   `db:"denied_by" json:"denied_by,omitempty"`
	DeniedAt            *time.Time     `db:"denied_at" json:"denied_at,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}

// Approved reports the stored flag for one party.
func (w *TimeConflictWaiver) Approved(party WaiverParty) bool {
	switch party {
	case WaiverPartyInstructor1:
		return w.Instructor1Approved
	case WaiverPartyInstructor2:
		return w.Instructor2Approved
	case WaiverPartyAdvisor:
		return w.AdvisorApproved
	default:
		return false
	}
}

// State derives the aggregate state from the stored record. It is never
// tracked independently, so the flags and the state cannot drift.
func (w *TimeConflictWaiver) State() WaiverState {
	if w.DeniedBy != nil {
		return WaiverStateDenied
	}
	if w.Instructor1Approved && w.Instructor2Approved && w.AdvisorApproved {
		return WaiverStateFullyApproved
	}
	return WaiverStatePending
}

// WaiverFilter scopes waiver listings.
type WaiverFilter struct {
	StudentID string
	TermID    string
	State     WaiverState
}
