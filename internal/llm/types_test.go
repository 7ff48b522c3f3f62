package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CompletionRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  CompletionRequest{Messages: []Message{NewSystemMessage("sys"), NewUserMessage("hi")}},
		},
		{
			name:    "no messages",
			req:     CompletionRequest{},
			wantErr: "at least one message",
		},
		{
			name:    "empty content",
			req:     CompletionRequest{Messages: []Message{NewUserMessage("")}},
			wantErr: "message 0",
		},
		{
			name:    "bad role",
			req:     CompletionRequest{Messages: []Message{{Role: "tool", Content: "x"}}},
			wantErr: "invalid role",
		},
		{
			name:    "temperature out of range",
			req:     CompletionRequest{Messages: []Message{NewUserMessage("hi")}, Temperature: 3},
			wantErr: "temperature",
		},
		{
			name:    "negative max tokens",
			req:     CompletionRequest{Messages: []Message{NewUserMessage("hi")}, MaxTokens: -1},
			wantErr: "max_tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompletionResponse_TextNil(t *testing.T) {
	var resp *CompletionResponse
	assert.Equal(t, "", resp.Text())
	assert.Equal(t, "hello", (&CompletionResponse{Message: NewAssistantMessage("hello")}).Text())
}

func TestDrain(t *testing.T) {
	t.Run("concatenates deltas in order", func(t *testing.T) {
		ch := make(chan StreamChunk, 4)
		ch <- StreamChunk{Delta: StreamDelta{Content: "Tom "}}
		ch <- StreamChunk{Delta: StreamDelta{Content: ""}}
		ch <- StreamChunk{Delta: StreamDelta{Content: "Hanks"}}
		ch <- StreamChunk{FinishReason: FinishReasonStop}
		close(ch)

		var seen []string
		text, err := Drain(context.Background(), ch, func(s string) { seen = append(seen, s) })
		require.NoError(t, err)
		assert.Equal(t, "Tom Hanks", text)
		assert.Equal(t, []string{"Tom ", "Hanks"}, seen)
	})

	t.Run("stops on error chunk", func(t *testing.T) {
		boom := errors.New("boom")
		ch := make(chan StreamChunk, 2)
		ch <- StreamChunk{Delta: StreamDelta{Content: "part"}}
		ch <- StreamChunk{Error: boom}
		close(ch)

		text, err := Drain(context.Background(), ch, nil)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "part", text)
	})

	t.Run("returns ctx error when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ch := make(chan StreamChunk)

		_, err := Drain(ctx, ch, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
