package agent

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"reviewd/internal/bootstrap/config"
	"reviewd/internal/errs"
	"reviewd/internal/ports"
)

// OpenAIAgent talks to any OpenAI-compatible chat completion endpoint (the
// default configuration points at Groq). It asks for a JSON object response,
// but callers still defensively parse: the response format is a request, not
// a guarantee.
type OpenAIAgent struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ ports.Agent = (*OpenAIAgent)(nil)

func NewOpenAIAgent(cfg config.AgentConfig) *OpenAIAgent {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIAgent{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
	}
}

func (a *OpenAIAgent) Complete(ctx context.Context, instructions string, input string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(a.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if a.maxTokens > 0 {
		params.MaxTokens = openai.Int(a.maxTokens)
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errs.Wrap(err, "chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
