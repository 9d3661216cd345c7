package review

import (
	"fmt"
)

// Category classifies the dominant theme of an agent review.
type Category string

const (
	CategoryPerformance Category = "performance"
	CategorySecurity    Category = "security"
	CategorySyntax      Category = "syntax"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPerformance, CategorySecurity, CategorySyntax:
		return true
	default:
		return false
	}
}

// RiskLevel grades the security assessment of a submission.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
	RiskNone   RiskLevel = "none"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskHigh, RiskMedium, RiskLow, RiskNone:
		return true
	default:
		return false
	}
}

// SecurityAssessment is the security section of an agent review.
type SecurityAssessment struct {
	RiskLevel RiskLevel `json:"risk_level"`
	Concerns  []string  `json:"concerns"`
}

// Result is the structured output the agent is instructed to produce. The
// json field names are the persisted document shape of the embedded
// code_review object.
//
// OverallScore is documented as 1-10 but deliberately not range-checked;
// Validate guards enum and presence conformance only.
type Result struct {
	OverallScore       int                `json:"overall_score"`
	Category           Category           `json:"category"`
	SecurityAssessment SecurityAssessment `json:"security_assessment"`
	Suggestions        string             `json:"suggestions"`
	RefactoredExample  string             `json:"refactored_example,omitempty"`
}

// Validate checks field presence and enum conformance.
func (r Result) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidResult, r.Category)
	}
	if !r.SecurityAssessment.RiskLevel.Valid() {
		return fmt.Errorf("%w: risk_level %q", ErrInvalidResult, r.SecurityAssessment.RiskLevel)
	}
	if r.SecurityAssessment.Concerns == nil {
		return fmt.Errorf("%w: security_assessment.concerns is required", ErrInvalidResult)
	}
	return nil
}
