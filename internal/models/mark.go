package models

// Mark is a transcript grade symbol.
type Mark string

// Quality-point marks. Each contributes to the GPA denominator.
const (
	MarkAPlus  Mark = "A+"
	MarkA      Mark = "A"
	MarkAMinus Mark = "A-"
	MarkBPlus  Mark = "B+"
	MarkB      Mark = "B"
	MarkBMinus Mark = "B-"
	MarkCPlus  Mark = "C+"
	MarkC      Mark = "C"
	MarkCMinus Mark = "C-"
	MarkDPlus  Mark = "D+"
	MarkD      Mark = "D"
	MarkDMinus Mark = "D-"
	MarkF      Mark = "F"
)

// Pass/fail marks. They count toward earned credit but never toward GPA.
const (
	MarkP  Mark = "P"
	MarkCR Mark = "CR"
	MarkS  Mark = "S"
	MarkNP Mark = "NP"
	MarkNC Mark = "NC"
	MarkU  Mark = "U"
)

// Administrative marks. Neither passing nor counted anywhere.
const (
	MarkI  Mark = "I"
	MarkW  Mark = "W"
	MarkWP Mark = "WP"
	MarkWF Mark = "WF"
	MarkIP Mark = "IP"
)

// MarkClass describes how a single mark contributes to progress
// calculations. The zero value is an indeterminate mark: not passing,
// no quality points.
type MarkClass struct {
	QualityPoints *float64 `json:"quality_points,omitempty"`
	Passing       bool     `json:"passing"`
}

// IsQualityPoint reports whether the mark enters the GPA denominator.
func (c MarkClass) IsQualityPoint() bool {
	return c.QualityPoints != nil
}

// GradeScale maps marks to quality points and pass verdicts. The scale is
// injected rather than read from a package-level table so registrars can
// swap it per catalog era.
type GradeScale struct {
	points   map[Mark]float64
	passFail map[Mark]bool
}

// NewGradeScale builds a scale from explicit tables. points holds
// quality-point marks; passFail holds pass/fail marks with their verdict.
func NewGradeScale(points map[Mark]float64, passFail map[Mark]bool) *GradeScale {
	p := make(map[Mark]float64, len(points))
	for mark, value := range points {
		p[mark] = value
	}
	pf := make(map[Mark]bool, len(passFail))
	for mark, passing := range passFail {
		pf[mark] = passing
	}
	return &GradeScale{points: p, passFail: pf}
}

// DefaultGradeScale returns the standard 4.0 scale: A+ and A both 4.0,
// then 0.3 steps down to F at 0.0.
func DefaultGradeScale() *GradeScale {
	return NewGradeScale(
		map[Mark]float64{
			MarkAPlus:  4.0,
			MarkA:      4.0,
			MarkAMinus: 3.7,
			MarkBPlus:  3.3,
			MarkB:      3.0,
			MarkBMinus: 2.7,
			MarkCPlus:  2.3,
			MarkC:      2.0,
			MarkCMinus: 1.7,
			MarkDPlus:  1.3,
			MarkD:      1.0,
			MarkDMinus: 0.7,
			MarkF:      0.0,
		},
		map[Mark]bool{
			MarkP:  true,
			MarkCR: true,
			MarkS:  true,
			MarkNP: false,
			MarkNC: false,
			MarkU:  false,
		},
	)
}

// Classify maps a mark to its contribution class. Unknown or blank marks
// (including administrative marks such as I or W) classify as
// indeterminate; callers never see an error for them.
func (s *GradeScale) Classify(mark Mark) MarkClass {
	if value, ok := s.points[mark]; ok {
		v := value
		return MarkClass{QualityPoints: &v, Passing: value > 0}
	}
	if passing, ok := s.passFail[mark]; ok {
		return MarkClass{Passing: passing}
	}
	return MarkClass{}
}
