package ports

import "context"

// Agent is the LLM-backed collaborator. Given system instructions and an
// input prompt it returns free-form text; callers must treat the output as
// untrusted and possibly malformed.
type Agent interface {
	Complete(ctx context.Context, instructions string, input string) (string, error)
}
