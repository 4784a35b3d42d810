package inference

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()

	resp, err := mock.Chat(ctx, &ChatRequest{Messages: []Message{NewUserMessage("Hello")}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message.Content != "Mock response" {
		t.Errorf("Content = %q", resp.Message.Content)
	}

	mock.Health(ctx)
	if mock.CallCount("Chat") != 1 || mock.CallCount("Health") != 1 {
		t.Errorf("calls = %+v", mock.Calls())
	}

	last := mock.LastCall()
	if last == nil || last.Method != "Health" {
		t.Errorf("LastCall = %+v", last)
	}

	mock.Reset()
	if len(mock.Calls()) != 0 {
		t.Error("Reset should clear calls")
	}
	if mock.LastCall() != nil {
		t.Error("LastCall after Reset should be nil")
	}
}

func TestMockWithoutFunc(t *testing.T) {
	m := &Mock{}
	if _, err := m.Chat(context.Background(), &ChatRequest{}); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Chat error = %v", err)
	}
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("builds system and user turn", func(t *testing.T) {
		mock := NewReplyMock("  vague \n")
		reply, err := Complete(ctx, mock, "classify", "hmm", MaxTokens(3), Temperature(0.1))
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if reply != "vague" {
			t.Errorf("reply = %q, want trimmed", reply)
		}

		req := mock.LastCall().Request
		if len(req.Messages) != 2 {
			t.Fatalf("messages = %d", len(req.Messages))
		}
		if req.Messages[0].Role != RoleSystem || req.Messages[0].Content != "classify" {
			t.Errorf("system = %+v", req.Messages[0])
		}
		if req.Messages[1].Role != RoleUser || req.Messages[1].Content != "hmm" {
			t.Errorf("user = %+v", req.Messages[1])
		}
		if req.MaxTokens != 3 || req.Temperature != 0.1 {
			t.Errorf("options not applied: %+v", req)
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		_, err := Complete(ctx, NewReplyMock("   "), "s", "u")
		if !errors.Is(err, ErrEmptyReply) {
			t.Errorf("error = %v, want ErrEmptyReply", err)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Complete(ctx, WithError(boom), "s", "u")
		if !errors.Is(err, boom) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestErrorTypes(t *testing.T) {
	if WrapError("x", nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}

	inner := errors.New("inner")
	err := WrapError("client", inner)
	if !errors.Is(err, inner) {
		t.Error("ProviderError should unwrap")
	}

	apiErr := &APIError{StatusCode: 503, Message: "down", Provider: "client"}
	if !apiErr.IsServerError() || !apiErr.IsRetryable() || apiErr.IsUnauthorized() {
		t.Errorf("classification wrong for 503")
	}
	if (&ChainError{}).Error() == "" {
		t.Error("empty ChainError should still describe itself")
	}
}
