package review

import (
	"errors"
	"testing"
)

const validAgentJSON = `{
  "overall_score": 8,
  "category": "performance",
  "security_assessment": {"risk_level": "low", "concerns": ["unchecked input"]},
  "suggestions": "Use a map for constant time lookups.",
  "refactored_example": "lookup = {}"
}`

func TestParseAgentOutputAcceptsObject(t *testing.T) {
	result, err := parseAgentOutput(validAgentJSON)
	if err != nil {
		t.Fatalf("parseAgentOutput() error = %v", err)
	}
	if result.OverallScore != 8 {
		t.Fatalf("parseAgentOutput() overall_score = %d", result.OverallScore)
	}
	if result.Category != "performance" {
		t.Fatalf("parseAgentOutput() category = %q", result.Category)
	}
	if result.SecurityAssessment.RiskLevel != "low" {
		t.Fatalf("parseAgentOutput() risk_level = %q", result.SecurityAssessment.RiskLevel)
	}
	if len(result.SecurityAssessment.Concerns) != 1 {
		t.Fatalf("parseAgentOutput() concerns = %v", result.SecurityAssessment.Concerns)
	}
	if result.RefactoredExample != "lookup = {}" {
		t.Fatalf("parseAgentOutput() refactored_example = %q", result.RefactoredExample)
	}
}

func TestParseAgentOutputStripsCodeFence(t *testing.T) {
	for name, raw := range map[string]string{
		"plain fence":    "```\n" + validAgentJSON + "\n```",
		"language fence": "```json\n" + validAgentJSON + "\n```",
		"padded fence":   "\n\n```json\n" + validAgentJSON + "\n```\n\n",
	} {
		result, err := parseAgentOutput(raw)
		if err != nil {
			t.Fatalf("%s: parseAgentOutput() error = %v", name, err)
		}
		if result.OverallScore != 8 {
			t.Fatalf("%s: parseAgentOutput() overall_score = %d", name, result.OverallScore)
		}
	}
}

func TestParseAgentOutputEmptyResponse(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":      "",
		"whitespace": "   \n\t  ",
		"fence only": "```json\n```",
		"bare fence": "```",
	} {
		if _, err := parseAgentOutput(raw); !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("%s: parseAgentOutput() error = %v, want ErrEmptyResponse", name, err)
		}
	}
}

func TestParseAgentOutputMalformedJSON(t *testing.T) {
	for name, raw := range map[string]string{
		"truncated": `{"overall_score": 8,`,
		"prose":     "I could not review this code.",
		"fenced":    "```json\n{not json}\n```",
	} {
		if _, err := parseAgentOutput(raw); !errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("%s: parseAgentOutput() error = %v, want ErrMalformedJSON", name, err)
		}
	}
}

func TestParseAgentOutputRejectsNonObject(t *testing.T) {
	for name, raw := range map[string]string{
		"array":  `[1, 2, 3]`,
		"string": `"a review"`,
		"number": `42`,
		"null":   `null`,
	} {
		if _, err := parseAgentOutput(raw); !errors.Is(err, ErrInvalidShape) {
			t.Fatalf("%s: parseAgentOutput() error = %v, want ErrInvalidShape", name, err)
		}
	}
}

func TestParseAgentOutputSchemaViolations(t *testing.T) {
	for name, raw := range map[string]string{
		"missing score":       `{"category": "syntax", "security_assessment": {"risk_level": "none", "concerns": []}, "suggestions": "x"}`,
		"missing category":    `{"overall_score": 5, "security_assessment": {"risk_level": "none", "concerns": []}, "suggestions": "x"}`,
		"missing security":    `{"overall_score": 5, "category": "syntax", "suggestions": "x"}`,
		"missing concerns":    `{"overall_score": 5, "category": "syntax", "security_assessment": {"risk_level": "none"}, "suggestions": "x"}`,
		"missing suggestions": `{"overall_score": 5, "category": "syntax", "security_assessment": {"risk_level": "none", "concerns": []}}`,
		"score not a number":  `{"overall_score": "five", "category": "syntax", "security_assessment": {"risk_level": "none", "concerns": []}, "suggestions": "x"}`,
		"unknown category":    `{"overall_score": 5, "category": "style", "security_assessment": {"risk_level": "none", "concerns": []}, "suggestions": "x"}`,
		"unknown risk level":  `{"overall_score": 5, "category": "syntax", "security_assessment": {"risk_level": "critical", "concerns": []}, "suggestions": "x"}`,
	} {
		if _, err := parseAgentOutput(raw); !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("%s: parseAgentOutput() error = %v, want ErrSchemaViolation", name, err)
		}
	}
}

func TestParseAgentOutputDoesNotRangeCheckScore(t *testing.T) {
	raw := `{"overall_score": 11, "category": "security", "security_assessment": {"risk_level": "high", "concerns": ["sql injection"]}, "suggestions": "parameterize queries"}`

	result, err := parseAgentOutput(raw)
	if err != nil {
		t.Fatalf("parseAgentOutput() error = %v", err)
	}
	if result.OverallScore != 11 {
		t.Fatalf("parseAgentOutput() overall_score = %d", result.OverallScore)
	}
}

func TestParseAgentOutputOptionalRefactoredExample(t *testing.T) {
	raw := `{"overall_score": 9, "category": "syntax", "security_assessment": {"risk_level": "none", "concerns": []}, "suggestions": "looks good"}`

	result, err := parseAgentOutput(raw)
	if err != nil {
		t.Fatalf("parseAgentOutput() error = %v", err)
	}
	if result.RefactoredExample != "" {
		t.Fatalf("parseAgentOutput() refactored_example = %q", result.RefactoredExample)
	}
}

func TestParseStage(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"empty":     {ErrEmptyResponse, "empty_response"},
		"malformed": {ErrMalformedJSON, "malformed_json"},
		"shape":     {ErrInvalidShape, "invalid_shape"},
		"schema":    {ErrSchemaViolation, "schema_violation"},
		"other":     {errors.New("boom"), "unknown"},
	}
	for name, tc := range cases {
		if got := parseStage(tc.err); got != tc.want {
			t.Fatalf("%s: parseStage() = %q, want %q", name, got, tc.want)
		}
	}
}
