package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/domain/review"
	"reviewd/internal/errs"
	"reviewd/internal/ports"
	reviewuc "reviewd/internal/usecase/review"
)

type createReviewRequest struct {
	Language       string `json:"language"`
	CodeSubmission string `json:"code_submission"`
}

type reviewResponse struct {
	ID             string         `json:"id"`
	Language       string         `json:"language"`
	Status         string         `json:"status"`
	CodeSubmission string         `json:"code_submission"`
	CodeReview     *review.Result `json:"code_review"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func toReviewResponse(rev review.Review) reviewResponse {
	return reviewResponse{
		ID:             rev.ID,
		Language:       rev.Language,
		Status:         string(rev.Status),
		CodeSubmission: rev.CodeSubmission,
		CodeReview:     rev.CodeReview,
		CreatedAt:      rev.CreatedAt,
		UpdatedAt:      rev.UpdatedAt,
	}
}

// handleCreateReview persists a pending review, responds immediately with its
// id, and schedules the completion task detached from the request context.
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	current, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	created, err := s.reviews.CreateReview(r.Context(), reviewuc.CreateReviewInput{
		UserID:         current.ID,
		Language:       req.Language,
		CodeSubmission: req.CodeSubmission,
	})
	if err != nil {
		switch {
		case errors.Is(err, review.ErrLanguageMissing), errors.Is(err, review.ErrCodeMissing):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			logging.Error(r.Context(), "create review failed", slog.Any("err", errs.Loggable(err)))
			writeError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}

	// Fire-and-forget: the client observes completion only by polling
	// GET /reviews/{id}.
	taskCtx := context.WithoutCancel(r.Context())
	go s.reviews.ProcessReview(taskCtx, created.ID, req.CodeSubmission, req.Language)

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Review created successfully",
		"review_id": created.ID,
	})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	reviewID := strings.TrimSpace(chi.URLParam(r, "id"))

	rev, err := s.reviews.GetReview(r.Context(), reviewID)
	if err != nil {
		if errors.Is(err, ports.ErrReviewNotFound) {
			// Deliberately loose: a miss answers 200 with a message.
			writeJSON(w, http.StatusOK, map[string]string{
				"message":   "Review not found",
				"review_id": reviewID,
			})
			return
		}
		logging.Error(r.Context(), "get review failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "failed to load review")
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(rev))
}

type listReviewsResponse struct {
	Message        string            `json:"message"`
	Username       string            `json:"username"`
	Email          string            `json:"email"`
	FiltersApplied map[string]string `json:"filters_applied"`
	TotalReviews   int               `json:"total_reviews"`
	Reviews        []reviewResponse  `json:"reviews"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	current, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	query := r.URL.Query()
	language := query.Get("language")
	status := query.Get("status")

	score := 0
	if rawScore := strings.TrimSpace(query.Get("score")); rawScore != "" && !strings.EqualFold(rawScore, "all") {
		parsed, err := strconv.Atoi(rawScore)
		if err != nil || parsed < 1 || parsed > 10 {
			writeError(w, http.StatusUnprocessableEntity, "score must be an integer between 1 and 10")
			return
		}
		score = parsed
	}

	reviews, err := s.reviews.ListReviews(r.Context(), reviewuc.ListReviewsInput{
		UserID:   current.ID,
		Language: language,
		Status:   status,
		Score:    score,
	})
	if err != nil {
		if errors.Is(err, review.ErrInvalidStatus) {
			writeError(w, http.StatusUnprocessableEntity, "invalid status filter")
			return
		}
		logging.Error(r.Context(), "list reviews failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	if isTruthy(query.Get("csv")) {
		document, err := reviewuc.ExportCSV(reviews)
		if err != nil {
			logging.Error(r.Context(), "csv export failed", slog.Any("err", errs.Loggable(err)))
			writeError(w, http.StatusInternalServerError, "failed to export reviews")
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="reviews.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(document)
		return
	}

	items := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		items = append(items, toReviewResponse(rev))
	}

	writeJSON(w, http.StatusOK, listReviewsResponse{
		Message:        fmt.Sprintf("Retrieved %d reviews for %s", len(items), current.Username),
		Username:       current.Username,
		Email:          current.Email,
		FiltersApplied: filtersApplied(language, status, score),
		TotalReviews:   len(items),
		Reviews:        items,
	})
}

func filtersApplied(language string, status string, score int) map[string]string {
	applied := map[string]string{"language": "all", "status": "all", "score": "all"}
	if trimmed := strings.TrimSpace(language); trimmed != "" && !strings.EqualFold(trimmed, "all") {
		applied["language"] = trimmed
	}
	if trimmed := strings.TrimSpace(status); trimmed != "" && !strings.EqualFold(trimmed, "all") {
		applied["status"] = trimmed
	}
	if score != 0 {
		applied["score"] = strconv.Itoa(score)
	}
	return applied
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
