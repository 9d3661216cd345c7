package ports

import (
	"context"
	"errors"

	"reviewd/internal/domain/review"
)

var ErrReviewNotFound = errors.New("review not found")

// ReviewFilter narrows FindByUserWithFilters. Zero values are no-ops; all set
// filters combine with AND. Score matches the nested code_review.overall_score
// field of the persisted document.
type ReviewFilter struct {
	Language string
	Status   review.Status
	Score    int
}

type ReviewRepository interface {
	// Create assigns an ID, persists normalized fields and returns the stored
	// review.
	Create(ctx context.Context, r review.Review) (review.Review, error)
	// FindByID returns ErrReviewNotFound when the id does not resolve.
	FindByID(ctx context.Context, id string) (review.Review, error)
	// Update fails with ErrReviewNotFound if the id is absent.
	Update(ctx context.Context, r review.Review) (review.Review, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByUser(ctx context.Context, userID string) ([]review.Review, error)
	FindByStatus(ctx context.Context, status review.Status) ([]review.Review, error)
	// FindByLanguage matches case/whitespace-insensitively.
	FindByLanguage(ctx context.Context, language string) ([]review.Review, error)
	FindByUserWithFilters(ctx context.Context, userID string, filter ReviewFilter) ([]review.Review, error)
}
