package repository

import (
	"encoding/json"
	"time"

	"reviewd/internal/domain/review"
	"reviewd/internal/domain/user"
	"reviewd/internal/infrastructure/persistence/sqlite/model"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func mapUser(row model.User) user.User {
	return user.User{
		ID:             row.UserID,
		Username:       row.Username,
		Email:          row.Email,
		HashedPassword: row.HashedPassword,
		IsActive:       row.IsActive,
		CreatedAt:      parseTime(row.CreatedAt),
	}
}

func mapReview(row model.Review) review.Review {
	return review.Review{
		ID:             row.ReviewID,
		UserID:         row.UserID,
		Language:       row.Language,
		CodeSubmission: row.CodeSubmission,
		Status:         review.Status(row.Status),
		CodeReview:     decodeResult(row.CodeReview),
		CreatedAt:      parseTime(row.CreatedAt),
		UpdatedAt:      parseTime(row.UpdatedAt),
	}
}

// decodeResult reconstructs the embedded code_review document. A document
// that no longer unmarshals or validates degrades to nil rather than failing
// the read.
func decodeResult(raw *string) *review.Result {
	if raw == nil || *raw == "" {
		return nil
	}

	var result review.Result
	if err := json.Unmarshal([]byte(*raw), &result); err != nil {
		return nil
	}
	if err := result.Validate(); err != nil {
		return nil
	}
	return &result
}

func encodeResult(result *review.Result) (*string, error) {
	if result == nil {
		return nil, nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	encoded := string(raw)
	return &encoded, nil
}
