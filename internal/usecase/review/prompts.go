package review

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"

	"reviewd/internal/errs"

	domainreview "reviewd/internal/domain/review"
)

// defaultInstructions is the language-parametrized system prompt. {language}
// and {schema} are substituted at build time; {schema} receives the JSON
// schema generated from the structured result type so prompt and parser can
// never drift apart.
const defaultInstructions = `You are an expert code reviewer specializing in the {language} programming language. Your role is to conduct thorough, constructive code reviews that help developers improve their skills and code quality.

IMPORTANT: You must respond with a single JSON object with this exact shape:

{
    "overall_score": <integer 1-10>,
    "category": "<performance|security|syntax>",
    "security_assessment": {
        "risk_level": "<high|medium|low|none>",
        "concerns": ["<list of security concerns>"]
    },
    "suggestions": "<your suggestions for the code, or congratulations>",
    "refactored_example": "<optional refactored code example>"
}

The response is validated against this JSON schema:

{schema}

## Review Guidelines
Analyze the submission comprehensively, focusing on:
- Structure and organization: logical flow, separation of concerns.
- Readability: naming, comments, consistent formatting.
- Functionality: logical errors, missing edge cases, input validation.
- Security: vulnerabilities, input sanitization, potential exploits.
- Performance: efficiency, memory usage, algorithmic complexity.

## Review Principles
- Be constructive and educational, not just critical.
- Explain the reasoning behind your recommendations.
- Prioritize issues by impact and severity.
- Suggest specific, actionable improvements.
- Acknowledge good practices when present.

Analyze the submitted code and respond with the JSON object only.`

// instructionsFor resolves the instruction template (profile override or
// default) and substitutes the placeholders.
func (s *Service) instructionsFor(language string) (string, error) {
	template := defaultInstructions
	if s.promptsFile != "" {
		profile, err := loadPromptProfile(s.promptsFile)
		if err != nil {
			return "", errs.Wrap(err, "load prompt profile")
		}
		if override := strings.TrimSpace(profile.Review.Instructions); override != "" {
			template = override
		}
	}

	schema, err := resultSchemaJSON()
	if err != nil {
		return "", errs.Wrap(err, "generate result schema")
	}

	instructions := strings.ReplaceAll(template, "{language}", strings.TrimSpace(language))
	instructions = strings.ReplaceAll(instructions, "{schema}", schema)
	return instructions, nil
}

func resultSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}

	schema := reflector.Reflect(&domainreview.Result{})
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
