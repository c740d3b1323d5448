package models

import "time"

// ClassStanding is the coarse progression tier gating registration timing.
type ClassStanding string

const (
	StandingU1 ClassStanding = "U1"
	StandingU2 ClassStanding = "U2"
	StandingU3 ClassStanding = "U3"
	StandingU4 ClassStanding = "U4"
)

// Rank orders standings for window resolution: U4 > U3 > U2 > U1.
// Unrecognized standings rank zero and never match a window.
func (s ClassStanding) Rank() int {
	switch s {
	case StandingU4:
		return 4
	case StandingU3:
		return 3
	case StandingU2:
		return 2
	case StandingU1:
		return 1
	default:
		return 0
	}
}

// CreditThreshold narrows a registration window to a credit cohort within
// a standing. A nil threshold on a window means it always applies.
type CreditThreshold string

const (
	// ThresholdHundredPlus requires at least 100 earned credits.
	ThresholdHundredPlus CreditThreshold = "100+"
	// ThresholdBelowHundred requires fewer than 100 earned credits.
	ThresholdBelowHundred CreditThreshold = "below100"
)

// Satisfied reports whether the student's earned credits meet the cohort.
// Unknown threshold values never match.
func (t CreditThreshold) Satisfied(earnedCredits float64) bool {
	switch t {
	case ThresholdHundredPlus:
		return earnedCredits >= 100
	case ThresholdBelowHundred:
		return earnedCredits < 100
	default:
		return false
	}
}

// RegistrationWindow is one configured registration-start slot for a term.
type RegistrationWindow struct {
	ID              string           `db:"id" json:"id"`
	TermID          string           `db:"term_id" json:"term_id"`
	ClassStanding   ClassStanding    `db:"class_standing" json:"class_standing"`
	CreditThreshold *CreditThreshold `db:"credit_threshold" json:"credit_threshold,omitempty"`
	StartsAt        time.Time        `db:"starts_at" json:"starts_at"`
}
