// Package openai implements service.Service on the OpenAI Chat Completions
// API. OpenAI-compatible endpoints (DeepSeek and friends) work through the
// BaseURL option.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/scenegen/service"
)

// Options configure the OpenAI service adapter. Fields mirror a minimal
// subset of Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	// BaseURL points the client at an OpenAI-compatible endpoint, e.g.
	// "https://api.deepseek.com" with Model "deepseek-chat".
	BaseURL string
}

// Service wraps the Chat Completions API behind service.Service.
type Service struct {
	client *openai.Client
	opts   Options
}

var _ service.Service = (*Service)(nil)

// New creates the adapter using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &Service{client: &client, opts: opts}
}

// NewFromClient creates the adapter from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

// Expand implements service.Service.
func (s *Service) Expand(ctx context.Context, req service.ExpandRequest) (string, error) {
	return s.complete(ctx, service.OpExpand, service.ExpandPrompt(req))
}

// Analyze implements service.Service.
func (s *Service) Analyze(ctx context.Context, req service.AnalyzeRequest) (string, error) {
	return s.complete(ctx, service.OpAnalyze, service.AnalyzePrompt(req))
}

func (s *Service) complete(ctx context.Context, op service.Op, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(service.SystemPrompt),
			openai.UserMessage(user),
		},
		Model:               s.opts.Model,
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxCompletionTokens),
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		// Transport, timeout and rate-limit failures are worth retrying.
		return "", service.NewRetryableError(op, fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", service.NewPermanentError(op, fmt.Errorf("no choices returned"))
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", service.NewPermanentError(op, fmt.Errorf("empty completion"))
	}
	return content, nil
}
