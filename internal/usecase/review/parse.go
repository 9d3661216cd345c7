package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reviewd/internal/domain/review"
)

// The agent is an untrusted, non-deterministic text generator. Each parse
// stage fails with its own sentinel so operators can see from the log which
// stage misbehaved; none of these errors ever reaches a caller.
var (
	ErrEmptyResponse   = errors.New("agent response is empty")
	ErrMalformedJSON   = errors.New("agent response is not valid JSON")
	ErrInvalidShape    = errors.New("agent response is not a JSON object")
	ErrSchemaViolation = errors.New("agent response does not match the review schema")
)

// parseAgentOutput runs the defensive parse pipeline: trim, strip a single
// markdown code fence if present, parse JSON, require an object, validate
// against the structured review schema.
func parseAgentOutput(raw string) (*review.Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	cleaned := stripCodeFence(trimmed)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, ErrMalformedJSON
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, ErrInvalidShape
	}

	// JSON validity is established above, so a decode failure here means a
	// field has the wrong type.
	var envelope resultEnvelope
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, err)
	}

	return envelope.toResult()
}

// stripCodeFence removes one leading fence line (``` with an optional
// language tag) and a matching trailing fence. Output without a fence passes
// through untouched.
func stripCodeFence(value string) string {
	if !strings.HasPrefix(value, "```") {
		return value
	}

	idx := strings.Index(value, "\n")
	if idx < 0 {
		return ""
	}
	value = value[idx+1:]

	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value)
}

// resultEnvelope mirrors review.Result with pointer fields so missing keys
// are distinguishable from zero values.
type resultEnvelope struct {
	OverallScore       *int              `json:"overall_score"`
	Category           *review.Category  `json:"category"`
	SecurityAssessment *securityEnvelope `json:"security_assessment"`
	Suggestions        *string           `json:"suggestions"`
	RefactoredExample  *string           `json:"refactored_example"`
}

type securityEnvelope struct {
	RiskLevel *review.RiskLevel `json:"risk_level"`
	Concerns  []string          `json:"concerns"`
}

func (e resultEnvelope) toResult() (*review.Result, error) {
	switch {
	case e.OverallScore == nil:
		return nil, fmt.Errorf("%w: overall_score is required", ErrSchemaViolation)
	case e.Category == nil:
		return nil, fmt.Errorf("%w: category is required", ErrSchemaViolation)
	case e.SecurityAssessment == nil:
		return nil, fmt.Errorf("%w: security_assessment is required", ErrSchemaViolation)
	case e.SecurityAssessment.RiskLevel == nil:
		return nil, fmt.Errorf("%w: security_assessment.risk_level is required", ErrSchemaViolation)
	case e.SecurityAssessment.Concerns == nil:
		return nil, fmt.Errorf("%w: security_assessment.concerns is required", ErrSchemaViolation)
	case e.Suggestions == nil:
		return nil, fmt.Errorf("%w: suggestions is required", ErrSchemaViolation)
	}

	result := review.Result{
		OverallScore: *e.OverallScore,
		Category:     *e.Category,
		SecurityAssessment: review.SecurityAssessment{
			RiskLevel: *e.SecurityAssessment.RiskLevel,
			Concerns:  e.SecurityAssessment.Concerns,
		},
		Suggestions: *e.Suggestions,
	}
	if e.RefactoredExample != nil {
		result.RefactoredExample = *e.RefactoredExample
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, err)
	}
	return &result, nil
}

// parseStage names the failing stage for log lines.
func parseStage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, ErrInvalidShape):
		return "invalid_shape"
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	default:
		return "unknown"
	}
}
