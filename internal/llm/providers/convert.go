package providers

import (
	"context"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

// toLangchainMessages converts messages to langchaingo MessageContent
func toLangchainMessages(messages []llm.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}

		result = append(result, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	return result
}

// fromLangchainResponse converts a langchaingo response
func fromLangchainResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        model,
		Message:      llm.Message{Role: llm.RoleAssistant},
		FinishReason: llm.FinishReasonStop,
	}
	if resp == nil || len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.Message.Content = choice.Content

	switch choice.StopReason {
	case "length", "max_tokens":
		out.FinishReason = llm.FinishReasonLength
	case "content_filter":
		out.FinishReason = llm.FinishReasonContentFilter
	}

	out.Usage = llm.TokenUsage{
		PromptTokens:     intFromInfo(choice.GenerationInfo, "PromptTokens", "input_tokens"),
		CompletionTokens: intFromInfo(choice.GenerationInfo, "CompletionTokens", "output_tokens"),
		TotalTokens:      intFromInfo(choice.GenerationInfo, "TotalTokens"),
	}
	if out.Usage.TotalTokens == 0 {
		out.Usage.TotalTokens = out.Usage.PromptTokens + out.Usage.CompletionTokens
	}

	return out
}

// intFromInfo reads the first integer value found under keys. Backends
// report usage under different names and numeric types.
func intFromInfo(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

// buildCallOptions converts a request into langchaingo call options
func buildCallOptions(req llm.CompletionRequest, cfg llm.ProviderConfig) []llms.CallOption {
	callOpts := make([]llms.CallOption, 0, 5)

	temperature := req.Temperature
	if temperature == 0 {
		temperature = cfg.Temperature
	}
	if temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(temperature))
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(maxTokens))
	}

	if len(req.StopSequences) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(req.StopSequences))
	}

	if model := modelFor(req, cfg); model != "" {
		callOpts = append(callOpts, llms.WithModel(model))
	}

	return callOpts
}

// buildStreamingCallOptions builds call options with a streaming callback
func buildStreamingCallOptions(req llm.CompletionRequest, cfg llm.ProviderConfig, streamFunc func(ctx context.Context, chunk []byte) error) []llms.CallOption {
	return append(buildCallOptions(req, cfg), llms.WithStreamingFunc(streamFunc))
}

func modelFor(req llm.CompletionRequest, cfg llm.ProviderConfig) string {
	if req.Model != "" {
		return req.Model
	}
	return cfg.Model
}
