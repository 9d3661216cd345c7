package review

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a review. A review is created as
// StatusPending and moved to exactly one terminal state (StatusCompleted or
// StatusRejected) by the background completion task.
//
// StatusInProgress is declared for forward compatibility with a task that
// announces itself before calling the agent; no current code path sets it.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// NormalizeStatus trims and lowercases a status filter value. Empty input
// stays empty (no filter).
func NormalizeStatus(value string) (Status, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", nil
	}

	s := Status(trimmed)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// NormalizeLanguage is the canonical form a language takes on every write and
// read path: lowercased and trimmed, so "Python " and "python" compare equal.
func NormalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

// Review is a user's code submission plus its lifecycle status and, once the
// agent has run, its structured assessment.
type Review struct {
	ID             string
	UserID         string
	Language       string
	CodeSubmission string
	Status         Status
	CodeReview     *Result
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New builds a pending review for a user. The ID is assigned by the store on
// Create.
func New(userID string, language string, codeSubmission string) Review {
	now := time.Now().UTC()
	return Review{
		UserID:         userID,
		Language:       language,
		CodeSubmission: codeSubmission,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Complete moves the review to its successful terminal state.
func (r *Review) Complete(result *Result) {
	r.CodeReview = result
	r.Status = StatusCompleted
	r.UpdatedAt = time.Now().UTC()
}

// Reject moves the review to its failed terminal state. The agent was
// consulted but produced nothing usable; the status field is the only durable
// record of that.
func (r *Review) Reject() {
	r.CodeReview = nil
	r.Status = StatusRejected
	r.UpdatedAt = time.Now().UTC()
}
