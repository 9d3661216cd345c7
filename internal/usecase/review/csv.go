package review

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"reviewd/internal/domain/review"
	"reviewd/internal/errs"
)

// csvSubmissionLimit caps the exported code submission column; spreadsheets
// choke on multi-thousand-character cells.
const csvSubmissionLimit = 500

var csvHeader = []string{
	"ID", "Language", "Status", "Score", "Category", "Risk Level",
	"Concerns", "Suggestions", "Code Submission", "Refactored Example",
	"Created At", "Updated At",
}

// ExportCSV renders reviews as a semicolon-delimited, UTF-8-BOM-prefixed CSV
// document. Embedded newlines are flattened to spaces so every review is one
// row; timestamps are ISO-8601.
func ExportCSV(reviews []review.Review) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeader); err != nil {
		return nil, errs.Wrap(err, "write csv header")
	}

	for _, rev := range reviews {
		if err := w.Write(csvRow(rev)); err != nil {
			return nil, errs.Wrap(err, "write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

func csvRow(rev review.Review) []string {
	score, category, risk, concerns, suggestions, refactored := "", "", "", "", "", ""
	if rev.CodeReview != nil {
		score = strconv.Itoa(rev.CodeReview.OverallScore)
		category = string(rev.CodeReview.Category)
		risk = string(rev.CodeReview.SecurityAssessment.RiskLevel)
		concerns = flatten(strings.Join(rev.CodeReview.SecurityAssessment.Concerns, ", "))
		suggestions = flatten(rev.CodeReview.Suggestions)
		refactored = flatten(rev.CodeReview.RefactoredExample)
	}

	return []string{
		rev.ID,
		rev.Language,
		string(rev.Status),
		score,
		category,
		risk,
		concerns,
		suggestions,
		flatten(truncate(rev.CodeSubmission, csvSubmissionLimit)),
		refactored,
		rev.CreatedAt.UTC().Format(time.RFC3339),
		rev.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func flatten(value string) string {
	replacer := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	return replacer.Replace(value)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
