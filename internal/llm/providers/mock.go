package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// MockCall represents a recorded call to the mock provider
type MockCall struct {
	Request   llm.CompletionRequest
	Streaming bool
}

// MockProvider is a scripted LLMProvider. Responses are served round-robin
// across Complete and Stream calls in call order.
type MockProvider struct {
	mu            sync.Mutex
	responses     []string
	responseIndex int
	calls         []MockCall
	failures      map[int]error
	delay         time.Duration
	chunkSize     int
}

// NewMockProvider creates a new mock provider
func NewMockProvider(responses []string) *MockProvider {
	return &MockProvider{
		responses: responses,
		failures:  make(map[int]error),
		chunkSize: 5,
	}
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// FailCall makes the call with the given zero-based index return err.
func (p *MockProvider) FailCall(index int, err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[index] = err
	return p
}

// SetDelay makes every call wait d (or until ctx is done) before answering.
func (p *MockProvider) SetDelay(d time.Duration) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
	return p
}

// next records the call and picks the scripted outcome.
func (p *MockProvider) next(req llm.CompletionRequest, streaming bool) (string, time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.calls)
	p.calls = append(p.calls, MockCall{Request: req, Streaming: streaming})

	if err, ok := p.failures[idx]; ok {
		return "", p.delay, err
	}
	if len(p.responses) == 0 {
		return "", p.delay, llm.NewProviderUnavailableError("mock", fmt.Errorf("no responses configured"))
	}

	response := p.responses[p.responseIndex%len(p.responses)]
	p.responseIndex++
	return response, p.delay, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Complete returns the next scripted response
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	response, delay, err := p.next(req, false)
	if waitErr := wait(ctx, delay); waitErr != nil {
		return nil, llm.TranslateError("mock", waitErr)
	}
	if err != nil {
		return nil, err
	}

	return &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        req.Model,
		Message:      llm.NewAssistantMessage(response),
		FinishReason: llm.FinishReasonStop,
		Usage: llm.TokenUsage{
			PromptTokens:     10,
			CompletionTokens: len(response) / 4,
			TotalTokens:      10 + len(response)/4,
		},
	}, nil
}

// Stream emits the next scripted response in fixed-size chunks
func (p *MockProvider) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	response, delay, err := p.next(req, true)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	chunkSize := p.chunkSize
	p.mu.Unlock()

	chunkChan := make(chan llm.StreamChunk, 10)

	go func() {
		defer close(chunkChan)

		if waitErr := wait(ctx, delay); waitErr != nil {
			return
		}

		for i := 0; i < len(response); i += chunkSize {
			end := min(i+chunkSize, len(response))
			select {
			case <-ctx.Done():
				return
			case chunkChan <- llm.StreamChunk{Delta: llm.StreamDelta{Content: response[i:end]}}:
			}
		}

		select {
		case <-ctx.Done():
		case chunkChan <- llm.StreamChunk{FinishReason: llm.FinishReasonStop}:
		}
	}()

	return chunkChan, nil
}

// Health always reports healthy
func (p *MockProvider) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock")
}

// GetCalls returns all recorded calls (thread-safe)
func (p *MockProvider) GetCalls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()

	calls := make([]MockCall, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// Reset clears recorded calls and rewinds the script
func (p *MockProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = nil
	p.responseIndex = 0
	p.failures = make(map[int]error)
}

// SetResponses replaces all responses
func (p *MockProvider) SetResponses(responses []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.responses = responses
	p.responseIndex = 0
}
