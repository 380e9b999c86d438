// Package anthropic implements service.Service on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/scenegen/service"
)

// Options configure the Anthropic service adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Service wraps the Messages API behind service.Service.
type Service struct {
	client *anthropic.Client
	opts   Options
}

var _ service.Service = (*Service)(nil)

// New creates the adapter using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Service{client: &client, opts: opts}
}

// NewFromClient creates the adapter from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
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
	params := anthropic.MessageNewParams{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: anthropic.Float(s.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: service.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", service.NewRetryableError(op, fmt.Errorf("anthropic api error: %w", err))
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", service.NewPermanentError(op, fmt.Errorf("empty completion"))
	}
	return content, nil
}
