package review

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"reviewd/internal/bootstrap/config"
	domainreview "reviewd/internal/domain/review"
	"reviewd/internal/infrastructure/cache"
	"reviewd/internal/infrastructure/persistence/sqlite/model"
	"reviewd/internal/infrastructure/persistence/sqlite/repository"
)

type stubAgent struct {
	output       string
	err          error
	calls        int
	instructions string
	input        string
}

func (a *stubAgent) Complete(_ context.Context, instructions string, input string) (string, error) {
	a.calls++
	a.instructions = instructions
	a.input = input
	if a.err != nil {
		return "", a.err
	}
	return a.output, nil
}

func setupCompletionService(t *testing.T, agent *stubAgent) *Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reviews.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Review{}, &model.AgentCache{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return NewService(
		config.AgentConfig{TimeoutSeconds: 5},
		repository.NewReviewRepository(db),
		agent,
		cache.NewSQLiteCache(db),
	)
}

func createPendingReview(t *testing.T, svc *Service) domainreview.Review {
	t.Helper()

	created, err := svc.CreateReview(context.Background(), CreateReviewInput{
		UserID:         "user-1",
		Language:       "python",
		CodeSubmission: "print('hello')",
	})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}
	if created.Status != domainreview.StatusPending {
		t.Fatalf("CreateReview() status = %q", created.Status)
	}
	return created
}

func TestProcessReviewCompletes(t *testing.T) {
	agent := &stubAgent{output: validAgentJSON}
	svc := setupCompletionService(t, agent)
	created := createPendingReview(t, svc)

	svc.ProcessReview(context.Background(), created.ID, created.CodeSubmission, created.Language)

	stored, err := svc.GetReview(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetReview() error = %v", err)
	}
	if stored.Status != domainreview.StatusCompleted {
		t.Fatalf("GetReview() status = %q", stored.Status)
	}
	if stored.CodeReview == nil {
		t.Fatal("GetReview() code_review = nil")
	}
	if stored.CodeReview.OverallScore != 8 {
		t.Fatalf("GetReview() overall_score = %d", stored.CodeReview.OverallScore)
	}
	if agent.input != created.CodeSubmission {
		t.Fatalf("agent input = %q", agent.input)
	}
}

func TestProcessReviewRejectsOnAgentError(t *testing.T) {
	agent := &stubAgent{err: errors.New("upstream unavailable")}
	svc := setupCompletionService(t, agent)
	created := createPendingReview(t, svc)

	svc.ProcessReview(context.Background(), created.ID, created.CodeSubmission, created.Language)

	stored, err := svc.GetReview(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetReview() error = %v", err)
	}
	if stored.Status != domainreview.StatusRejected {
		t.Fatalf("GetReview() status = %q", stored.Status)
	}
	if stored.CodeReview != nil {
		t.Fatalf("GetReview() code_review = %+v", stored.CodeReview)
	}
}

func TestProcessReviewRejectsOnUnusableOutput(t *testing.T) {
	for name, output := range map[string]string{
		"empty":            "",
		"prose":            "Sorry, I cannot review this.",
		"array":            "[]",
		"missing fields":   `{"overall_score": 3}`,
		"invalid category": `{"overall_score": 3, "category": "style", "security_assessment": {"risk_level": "none", "concerns": []}, "suggestions": "x"}`,
	} {
		agent := &stubAgent{output: output}
		svc := setupCompletionService(t, agent)
		created := createPendingReview(t, svc)

		svc.ProcessReview(context.Background(), created.ID, created.CodeSubmission, created.Language)

		stored, err := svc.GetReview(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("%s: GetReview() error = %v", name, err)
		}
		if stored.Status != domainreview.StatusRejected {
			t.Fatalf("%s: GetReview() status = %q", name, stored.Status)
		}
	}
}

func TestProcessReviewMissingReviewIsNoOp(t *testing.T) {
	agent := &stubAgent{output: validAgentJSON}
	svc := setupCompletionService(t, agent)

	svc.ProcessReview(context.Background(), "no-such-review", "code", "python")

	// The agent must not be consulted for a review that does not exist.
	if agent.input != "" {
		t.Fatalf("agent input = %q", agent.input)
	}
}

func TestProcessReviewReusesCachedAgentResponse(t *testing.T) {
	agent := &stubAgent{output: validAgentJSON}
	svc := setupCompletionService(t, agent)

	first := createPendingReview(t, svc)
	svc.ProcessReview(context.Background(), first.ID, first.CodeSubmission, first.Language)

	second := createPendingReview(t, svc)
	svc.ProcessReview(context.Background(), second.ID, second.CodeSubmission, second.Language)

	if agent.calls != 1 {
		t.Fatalf("agent calls = %d, want 1 for identical submissions", agent.calls)
	}

	stored, err := svc.GetReview(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetReview() error = %v", err)
	}
	if stored.Status != domainreview.StatusCompleted {
		t.Fatalf("GetReview() status = %q", stored.Status)
	}
	if stored.CodeReview == nil || stored.CodeReview.OverallScore != 8 {
		t.Fatalf("GetReview() code_review = %+v", stored.CodeReview)
	}
}

func TestProcessReviewDoesNotCacheRejections(t *testing.T) {
	agent := &stubAgent{output: "not json"}
	svc := setupCompletionService(t, agent)

	first := createPendingReview(t, svc)
	svc.ProcessReview(context.Background(), first.ID, first.CodeSubmission, first.Language)

	second := createPendingReview(t, svc)
	svc.ProcessReview(context.Background(), second.ID, second.CodeSubmission, second.Language)

	if agent.calls != 2 {
		t.Fatalf("agent calls = %d, want 2 when output never validated", agent.calls)
	}
}

func TestProcessReviewSendsLanguageAndSchema(t *testing.T) {
	agent := &stubAgent{output: validAgentJSON}
	svc := setupCompletionService(t, agent)
	created := createPendingReview(t, svc)

	svc.ProcessReview(context.Background(), created.ID, created.CodeSubmission, created.Language)

	if !strings.Contains(agent.instructions, "python") {
		t.Fatalf("instructions missing language: %q", agent.instructions)
	}
	if !strings.Contains(agent.instructions, `"overall_score"`) {
		t.Fatal("instructions missing result schema")
	}
	if strings.Contains(agent.instructions, "{language}") || strings.Contains(agent.instructions, "{schema}") {
		t.Fatal("instructions contain unsubstituted placeholders")
	}
}
