package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ProgramType distinguishes declared majors from minors.
type ProgramType string

const (
	ProgramTypeMajor ProgramType = "MAJOR"
	ProgramTypeMinor ProgramType = "MINOR"
)

// StudentProgram is a student's declared program together with the
// registrar's requirement document for it. Requirements is nil when the
// catalog has no document for the program yet.
type StudentProgram struct {
	ID           string                     `db:"id" json:"id"`
	StudentID    string                     `db:"student_id" json:"student_id"`
	ProgramType  ProgramType                `db:"program_type" json:"program_type"`
	Subject      string                     `db:"subject" json:"subject"`
	DegreeType   string                     `db:"degree_type" json:"degree_type"`
	Requirements *DegreeRequirementDocument `db:"requirements" json:"requirements,omitempty"`
}

// RequirementNode is one declarative requirement inside a program document.
// The set of implementations is closed; documents are decoded by tag so an
// unknown node type fails loudly at parse time instead of being silently
// probed at evaluation time.
type RequirementNode interface {
	nodeType() string
}

// Node type tags used in stored requirement documents.
const (
	nodeTypeRequiredCourses = "requiredCourses"
	nodeTypeElectives       = "electives"
	nodeTypeSequence        = "sequence"
	nodeTypeCreditThreshold = "creditThreshold"
)

// CourseRef identifies a course by subject and number. Course numbers are
// strings so suffixes like "101H" compare exactly.
type CourseRef struct {
	Subject      string `json:"subject"`
	CourseNumber string `json:"courseNumber"`
}

// RequiredCourse is a single course requirement with an optional minimum
// grade the catalog displays next to it.
type RequiredCourse struct {
	Subject      string `json:"subject"`
	CourseNumber string `json:"courseNumber"`
	MinGrade     *Mark  `json:"minGrade,omitempty"`
}

// RequiredCoursesNode lists the courses a program demands.
type RequiredCoursesNode struct {
	Courses []RequiredCourse `json:"courses"`
}

func (RequiredCoursesNode) nodeType() string { return nodeTypeRequiredCourses }

// ElectivesNode captures elective constraints. The matcher echoes it for
// display without evaluating it.
type ElectivesNode struct {
	MinCredits float64  `json:"minCredits"`
	Subjects   []string `json:"subjects,omitempty"`
	MinLevel   int      `json:"minLevel,omitempty"`
	Note       string   `json:"note,omitempty"`
}

func (ElectivesNode) nodeType() string { return nodeTypeElectives }

// SequenceNode is an ordered chain of courses (e.g. a two-semester
// sequence). Each member is matched like a required course.
type SequenceNode struct {
	Name    string      `json:"name,omitempty"`
	Courses []CourseRef `json:"courses"`
}

func (SequenceNode) nodeType() string { return nodeTypeSequence }

// CreditThresholdNode requires a minimum number of completed credits.
type CreditThresholdNode struct {
	MinCredits float64 `json:"minCredits"`
}

func (CreditThresholdNode) nodeType() string { return nodeTypeCreditThreshold }

// DegreeRequirementDocument is the registrar-owned requirement document for
// one program. It is read-only input to the matcher and round-trips
// losslessly through its JSONB column.
type DegreeRequirementDocument struct {
	Nodes []RequirementNode
}

type taggedNode struct {
	Type string `json:"type"`
}

// UnmarshalJSON decodes a JSON array of tagged requirement nodes.
func (d *DegreeRequirementDocument) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("requirement document must be an array: %w", err)
	}
	nodes := make([]RequirementNode, 0, len(raw))
	for i, item := range raw {
		var tag taggedNode
		if err := json.Unmarshal(item, &tag); err != nil {
			return fmt.Errorf("requirement node %d: %w", i, err)
		}
		var node RequirementNode
		switch tag.Type {
		case nodeTypeRequiredCourses:
			var n RequiredCoursesNode
			if err := json.Unmarshal(item, &n); err != nil {
				return fmt.Errorf("requirement node %d: %w", i, err)
			}
			node = n
		case nodeTypeElectives:
			var n ElectivesNode
			if err := json.Unmarshal(item, &n); err != nil {
				return fmt.Errorf("requirement node %d: %w", i, err)
			}
			node = n
		case nodeTypeSequence:
			var n SequenceNode
			if err := json.Unmarshal(item, &n); err != nil {
				return fmt.Errorf("requirement node %d: %w", i, err)
			}
			node = n
		case nodeTypeCreditThreshold:
			var n CreditThresholdNode
			if err := json.Unmarshal(item, &n); err != nil {
				return fmt.Errorf("requirement node %d: %w", i, err)
			}
			node = n
		default:
			return fmt.Errorf("requirement node %d: unknown type %q", i, tag.Type)
		}
		nodes = append(nodes, node)
	}
	d.Nodes = nodes
	return nil
}

// MarshalJSON encodes the document back to the tagged-array form.
func (d DegreeRequirementDocument) MarshalJSON() ([]byte, error) {
	items := make([]map[string]interface{}, 0, len(d.Nodes))
	for _, node := range d.Nodes {
		inner, err := json.Marshal(node)
		if err != nil {
			return nil, err
		}
		item := map[string]interface{}{}
		if err := json.Unmarshal(inner, &item); err != nil {
			return nil, err
		}
		item["type"] = node.nodeType()
		items = append(items, item)
	}
	return json.Marshal(items)
}

// Value marshals the document for JSONB persistence.
func (d DegreeRequirementDocument) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal requirement document: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the document.
func (d *DegreeRequirementDocument) Scan(value interface{}) error {
	if value == nil {
		*d = DegreeRequirementDocument{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DegreeRequirementDocument", value)
	}
	if len(data) == 0 {
		*d = DegreeRequirementDocument{}
		return nil
	}
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("unmarshal requirement document: %w", err)
	}
	return nil
}

// RequiredCourseStatus is the evaluated state of one required course.
type RequiredCourseStatus struct {
	Subject      string `json:"subject"`
	CourseNumber string `json:"course_number"`
	MinGrade     *Mark  `json:"min_grade,omitempty"`
	Completed    bool   `json:"completed"`
	InProgress   bool   `json:"in_progress"`
	Grade        *Mark  `json:"grade,omitempty"`
}

// SequenceStatus is the evaluated state of a sequence constraint.
type SequenceStatus struct {
	Name    string                 `json:"name,omitempty"`
	Courses []RequiredCourseStatus `json:"courses"`
}

// CreditThresholdStatus reports satisfaction of a credit minimum.
type CreditThresholdStatus struct {
	MinCredits float64 `json:"min_credits"`
	Earned     float64 `json:"earned"`
	Satisfied  bool    `json:"satisfied"`
}

// ProgramRequirementStatus is the per-program output of the degree matcher.
type ProgramRequirementStatus struct {
	ProgramName      string                 `json:"program_name"`
	RequiredCourses  []RequiredCourseStatus `json:"required_courses"`
	Sequences        []SequenceStatus       `json:"sequences,omitempty"`
	CreditThresholds []CreditThresholdStatus `json:"credit_thresholds,omitempty"`
	Electives        []ElectivesNode        `json:"electives,omitempty"`
}
