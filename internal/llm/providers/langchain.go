package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// LangchainProvider adapts any langchaingo llms.Model to llm.LLMProvider.
// The per-backend constructors only differ in how the client is built.
type LangchainProvider struct {
	name   string
	client llms.Model
	config llm.ProviderConfig
}

// NewLangchainProvider wraps an already constructed langchaingo model.
func NewLangchainProvider(name string, client llms.Model, cfg llm.ProviderConfig) *LangchainProvider {
	return &LangchainProvider{name: name, client: client, config: cfg}
}

// Name returns the provider name
func (p *LangchainProvider) Name() string {
	return p.name
}

// Complete sends a completion request
func (p *LangchainProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, llm.NewInvalidRequestError(err.Error())
	}

	resp, err := p.client.GenerateContent(ctx, toLangchainMessages(req.Messages), buildCallOptions(req, p.config)...)
	if err != nil {
		return nil, llm.TranslateError(p.name, err)
	}

	return fromLangchainResponse(resp, modelFor(req, p.config)), nil
}

// Stream sends a streaming completion request
func (p *LangchainProvider) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	if err := req.Validate(); err != nil {
		return nil, llm.NewInvalidRequestError(err.Error())
	}

	chunkChan := make(chan llm.StreamChunk, 10)

	callOpts := buildStreamingCallOptions(req, p.config, func(ctx context.Context, chunk []byte) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunkChan <- llm.StreamChunk{Delta: llm.StreamDelta{Content: string(chunk)}}:
			return nil
		}
	})

	go func() {
		defer close(chunkChan)

		final := llm.StreamChunk{FinishReason: llm.FinishReasonStop}
		if _, err := p.client.GenerateContent(ctx, toLangchainMessages(req.Messages), callOpts...); err != nil {
			final = llm.StreamChunk{
				FinishReason: llm.FinishReasonError,
				Error:        llm.TranslateError(p.name, err),
			}
		}

		select {
		case <-ctx.Done():
		case chunkChan <- final:
		}
	}()

	return chunkChan, nil
}

// Health sends a one-token request to the backend
func (p *LangchainProvider) Health(ctx context.Context) types.HealthStatus {
	req := llm.CompletionRequest{
		Messages:  []llm.Message{llm.NewUserMessage("ping")},
		MaxTokens: 1,
	}

	if _, err := p.Complete(ctx, req); err != nil {
		return types.Unhealthy(err.Error())
	}

	return types.Healthy(fmt.Sprintf("%s/%s reachable", p.name, p.config.Model))
}
