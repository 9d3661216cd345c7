package review

import (
	"context"
	"errors"
	"testing"

	domainreview "reviewd/internal/domain/review"
	"reviewd/internal/ports"
)

func TestCreateReviewValidatesInput(t *testing.T) {
	svc := setupCompletionService(t, &stubAgent{})

	cases := map[string]struct {
		input   CreateReviewInput
		wantErr error
	}{
		"missing language": {
			input:   CreateReviewInput{UserID: "user-1", CodeSubmission: "print('x')"},
			wantErr: domainreview.ErrLanguageMissing,
		},
		"blank language": {
			input:   CreateReviewInput{UserID: "user-1", Language: "   ", CodeSubmission: "print('x')"},
			wantErr: domainreview.ErrLanguageMissing,
		},
		"missing code": {
			input:   CreateReviewInput{UserID: "user-1", Language: "python"},
			wantErr: domainreview.ErrCodeMissing,
		},
		"blank code": {
			input:   CreateReviewInput{UserID: "user-1", Language: "python", CodeSubmission: "\n\t "},
			wantErr: domainreview.ErrCodeMissing,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateReview(context.Background(), tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("CreateReview() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestGetReviewTrimsID(t *testing.T) {
	svc := setupCompletionService(t, &stubAgent{})
	created := createPendingReview(t, svc)

	got, err := svc.GetReview(context.Background(), "  "+created.ID+" ")
	if err != nil {
		t.Fatalf("GetReview() error = %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("GetReview() id = %q, want %q", got.ID, created.ID)
	}
}

func TestDeleteReview(t *testing.T) {
	svc := setupCompletionService(t, &stubAgent{})
	created := createPendingReview(t, svc)

	deleted, err := svc.DeleteReview(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("DeleteReview() error = %v", err)
	}
	if !deleted {
		t.Fatal("DeleteReview() = false, want true")
	}

	if _, err := svc.GetReview(context.Background(), created.ID); !errors.Is(err, ports.ErrReviewNotFound) {
		t.Fatalf("GetReview() after delete error = %v, want %v", err, ports.ErrReviewNotFound)
	}

	deleted, err = svc.DeleteReview(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("DeleteReview() second call error = %v", err)
	}
	if deleted {
		t.Fatal("DeleteReview() second call = true, want false")
	}
}

func TestListReviewsTreatsAllAsUnset(t *testing.T) {
	svc := setupCompletionService(t, &stubAgent{})
	createPendingReview(t, svc)

	got, err := svc.ListReviews(context.Background(), ListReviewsInput{
		UserID:   "user-1",
		Language: "All",
		Status:   "all",
	})
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListReviews() len = %d, want 1", len(got))
	}
}

func TestListReviewsRejectsUnknownStatus(t *testing.T) {
	svc := setupCompletionService(t, &stubAgent{})

	if _, err := svc.ListReviews(context.Background(), ListReviewsInput{
		UserID: "user-1",
		Status: "bogus",
	}); !errors.Is(err, domainreview.ErrInvalidStatus) {
		t.Fatalf("ListReviews() error = %v, want %v", err, domainreview.ErrInvalidStatus)
	}
}
