// Package inference talks to chat-completion language models.
//
// Every call the tour guide makes is a single turn: a system instruction and
// one user message in, one reply out. Providers speak the OpenAI-compatible
// /chat/completions API, so OpenAI, Ollama, vLLM and similar servers all work.
//
//	client, _ := inference.NewClient(
//	    inference.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    inference.WithModel("gpt-4o-mini"),
//	)
//	defer client.Close()
//
//	reply, _ := inference.Complete(ctx, client, "Reply with one word.", "Say hi")
package inference

import (
	"context"
	"strings"
)

// Provider generates chat completions.
type Provider interface {
	// Chat generates a response from a sequence of messages.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Health checks provider connectivity and credentials.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// ChatRequest for chat completions.
type ChatRequest struct {
	Messages []Message

	// Model overrides the default model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0-2.0). Zero uses the provider default.
	Temperature float64

	// Stop sequences that halt generation.
	Stop []string
}

// ChatResponse from chat completion.
type ChatResponse struct {
	Message      Message
	FinishReason string
	Usage        Usage
	Model        string
	LatencyMs    int64
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Complete sends one system instruction and one user message and returns the
// trimmed reply text. An empty reply is an error.
func Complete(ctx context.Context, p Provider, system, user string, opts ...RequestOption) (string, error) {
	req := &ChatRequest{
		Messages: []Message{
			NewSystemMessage(system),
			NewUserMessage(user),
		},
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := p.Chat(ctx, req)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(resp.Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// RequestOption adjusts a single request built by Complete.
type RequestOption func(*ChatRequest)

// MaxTokens caps the reply length.
func MaxTokens(n int) RequestOption {
	return func(r *ChatRequest) { r.MaxTokens = n }
}

// Temperature sets sampling temperature.
func Temperature(t float64) RequestOption {
	return func(r *ChatRequest) { r.Temperature = t }
}
