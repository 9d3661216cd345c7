package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"reviewd/internal/bootstrap/config"
	"reviewd/internal/domain/review"
	"reviewd/internal/ports"
)

// Service is the orchestration layer between HTTP and the review repository,
// and owns the background completion task.
type Service struct {
	repo        ports.ReviewRepository
	agent       ports.Agent
	cache       ports.Cache
	timeout     time.Duration
	promptsFile string
}

// NewService builds the review service. cache may be nil, in which case every
// submission consults the agent.
func NewService(cfg config.AgentConfig, repo ports.ReviewRepository, agent ports.Agent, cache ports.Cache) *Service {
	return &Service{
		repo:        repo,
		agent:       agent,
		cache:       cache,
		timeout:     cfg.Timeout(),
		promptsFile: cfg.PromptsFile,
	}
}

type CreateReviewInput struct {
	UserID         string
	Language       string
	CodeSubmission string
}

// CreateReview persists a pending review. The caller is responsible for
// scheduling ProcessReview afterwards.
func (s *Service) CreateReview(ctx context.Context, input CreateReviewInput) (review.Review, error) {
	if ctx == nil {
		return review.Review{}, errors.New("context is required")
	}

	if strings.TrimSpace(input.Language) == "" {
		return review.Review{}, review.ErrLanguageMissing
	}
	if strings.TrimSpace(input.CodeSubmission) == "" {
		return review.Review{}, review.ErrCodeMissing
	}

	return s.repo.Create(ctx, review.New(input.UserID, input.Language, input.CodeSubmission))
}

func (s *Service) GetReview(ctx context.Context, id string) (review.Review, error) {
	if ctx == nil {
		return review.Review{}, errors.New("context is required")
	}
	return s.repo.FindByID(ctx, strings.TrimSpace(id))
}

func (s *Service) DeleteReview(ctx context.Context, id string) (bool, error) {
	if ctx == nil {
		return false, errors.New("context is required")
	}
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

type ListReviewsInput struct {
	UserID   string
	Language string
	Status   string
	Score    int
}

// ListReviews returns the user's reviews narrowed by the optional filters.
// The literal value "all" is treated as no filter.
func (s *Service) ListReviews(ctx context.Context, input ListReviewsInput) ([]review.Review, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	status, err := review.NormalizeStatus(cleanFilter(input.Status))
	if err != nil {
		return nil, err
	}

	return s.repo.FindByUserWithFilters(ctx, input.UserID, ports.ReviewFilter{
		Language: cleanFilter(input.Language),
		Status:   status,
		Score:    input.Score,
	})
}

func cleanFilter(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "all") {
		return ""
	}
	return trimmed
}
