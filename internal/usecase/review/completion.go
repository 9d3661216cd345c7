package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/domain/review"
	"reviewd/internal/errs"
	"reviewd/internal/ports"
)

// ProcessReview drives a pending review to a terminal state: consult the
// agent exactly once, no retry, and persist completed or rejected. Runs
// fire-and-forget after the HTTP response is sent, so nothing here returns an
// error; failures are logged and the review's status field is the only
// durable record of them.
func (s *Service) ProcessReview(ctx context.Context, reviewID string, codeSubmission string, language string) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithAttrs(ctx,
		slog.String("component", "usecase.review.completion"),
		slog.String("review_id", reviewID),
	)

	existing, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ports.ErrReviewNotFound) {
			logging.Error(ctx, "review not found")
		} else {
			logging.Error(ctx, "load review failed", slog.Any("err", errs.Loggable(err)))
		}
		return
	}

	// The transition below is unconditional: whatever the agent did, the
	// review leaves pending.
	result := s.consultAgent(ctx, codeSubmission, language)
	if result != nil {
		existing.Complete(result)
	} else {
		existing.Reject()
	}

	if _, err := s.repo.Update(ctx, existing); err != nil {
		// Fire-and-forget: no caller to report to.
		logging.Error(ctx, "persist review outcome failed",
			slog.String("status", string(existing.Status)),
			slog.Any("err", errs.Loggable(err)),
		)
		return
	}

	logging.Info(ctx, "review processed", slog.String("status", string(existing.Status)))
}

// consultAgent invokes the agent under the configured timeout and parses its
// output. Every failure mode, including timeout, collapses to nil, which the
// caller records as a rejected review. Validated responses are memoized by
// submission digest so resubmitting identical code skips the agent.
func (s *Service) consultAgent(ctx context.Context, codeSubmission string, language string) *review.Result {
	cacheKey := agentCacheKey(language, codeSubmission)
	if cached, ok := s.cachedResult(ctx, cacheKey); ok {
		logging.Info(ctx, "agent response served from cache")
		return cached
	}

	instructions, err := s.instructionsFor(language)
	if err != nil {
		logging.Error(ctx, "build agent instructions failed", slog.Any("err", errs.Loggable(err)))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.agent.Complete(callCtx, instructions, codeSubmission)
	if err != nil {
		logging.Error(ctx, "agent invocation failed", slog.Any("err", errs.Loggable(err)))
		return nil
	}

	result, err := parseAgentOutput(raw)
	if err != nil {
		logging.Warn(ctx, "agent output unusable",
			slog.String("stage", parseStage(err)),
			slog.Any("err", errs.Loggable(err)),
		)
		return nil
	}

	s.storeResult(ctx, cacheKey, result)
	return result
}

// agentCacheTTL bounds how long a memoized agent response is reused. Prompt
// profiles and models change; a day keeps resubmission cheap without serving
// reviews from a retired configuration indefinitely.
const agentCacheTTL = 24 * time.Hour

func agentCacheKey(language string, codeSubmission string) string {
	digest := sha256.Sum256([]byte(review.NormalizeLanguage(language) + "\x00" + codeSubmission))
	return "review:" + hex.EncodeToString(digest[:])
}

// cachedResult returns a previously validated result. Cache failures and
// entries that no longer validate are misses.
func (s *Service) cachedResult(ctx context.Context, key string) (*review.Result, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "agent cache lookup failed", slog.Any("err", errs.Loggable(err)))
		return nil, false
	}
	if !found {
		return nil, false
	}

	result, err := parseAgentOutput(raw)
	if err != nil {
		return nil, false
	}
	return result, true
}

func (s *Service) storeResult(ctx context.Context, key string, result *review.Result) {
	if s.cache == nil || result == nil {
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(encoded), agentCacheTTL); err != nil {
		logging.Warn(ctx, "agent cache store failed", slog.Any("err", errs.Loggable(err)))
	}
}
