package guide

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/inference"
	"github.com/teslashibe/go-docent/pkg/intent"
)

func TestJudge(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		reply   string
		want    intent.Interest
		wantErr error
	}{
		{"vague", intent.InterestVague, nil},
		{"Specific.", intent.InterestSpecific, nil},
		{"I think it's vague", intent.InterestUnknown, intent.ErrUnexpectedReply},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			llm := inference.NewReplyMock(tt.reply)
			g := New(llm)

			got, err := g.Judge(ctx, "hmm, not really sure")
			if got != tt.want {
				t.Errorf("Judge = %v, want %v", got, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			req := llm.LastCall().Request
			if !strings.Contains(req.Messages[0].Content, "Reply ONLY with 'vague' or 'specific'") {
				t.Errorf("system prompt = %q", req.Messages[0].Content)
			}
			if req.Messages[1].Content != "hmm, not really sure" {
				t.Errorf("user message = %q", req.Messages[1].Content)
			}
		})
	}

	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("offline")
		_, err := New(inference.WithError(boom)).Judge(ctx, "x")
		if !errors.Is(err, boom) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestJudgeDrivesClassifier(t *testing.T) {
	c := intent.NewClassifier(nil, intent.WithJudge(New(inference.NewReplyMock("vague"))))
	if got := c.Resolve(context.Background(), "hmm, something fun"); got != intent.Unsure {
		t.Errorf("Resolve = %v, want UNSURE", got)
	}

	c = intent.NewClassifier(nil, intent.WithJudge(New(inference.NewReplyMock("banana"))))
	if got := c.Resolve(context.Background(), "hmm, something fun"); got != intent.Other {
		t.Errorf("Resolve with bad reply = %v, want OTHER", got)
	}
}

func TestIntro(t *testing.T) {
	llm := inference.NewReplyMock("Welcome! Today we'll see dinosaurs and space.")
	g := New(llm)

	got, err := g.Intro(context.Background(), []string{"Natural History Wing", "Cosmos Exploration Room"})
	if err != nil {
		t.Fatalf("Intro: %v", err)
	}
	if got != "Welcome! Today we'll see dinosaurs and space." {
		t.Errorf("Intro = %q", got)
	}

	system := llm.LastCall().Request.Messages[0].Content
	if !strings.Contains(system, "Natural History Wing, Cosmos Exploration Room") {
		t.Errorf("stops missing from prompt: %q", system)
	}
	if !strings.Contains(system, "under 3 sentences") || !strings.Contains(system, "Do not include movement instructions") {
		t.Errorf("constraints missing from prompt: %q", system)
	}

	if _, err := g.Intro(context.Background(), nil); err == nil {
		t.Error("Intro with no stops should fail")
	}
}

func TestAnswer(t *testing.T) {
	llm := inference.NewReplyMock("It erupted in 1980.")
	g := New(llm)
	exhibit := catalog.Exhibit{Name: "Earth Science Theatre", Keywords: []string{"volcano"}, Description: "A working volcano model."}

	got, err := g.Answer(context.Background(), exhibit, "When did it erupt?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != "It erupted in 1980." {
		t.Errorf("Answer = %q", got)
	}

	req := llm.LastCall().Request
	if !strings.Contains(req.Messages[0].Content, "Earth Science Theatre") ||
		!strings.Contains(req.Messages[0].Content, "A working volcano model.") {
		t.Errorf("system prompt = %q", req.Messages[0].Content)
	}
	if req.Messages[1].Content != "When did it erupt?" {
		t.Errorf("question = %q", req.Messages[1].Content)
	}

	if _, err := New(inference.NewReplyMock("")).Answer(context.Background(), exhibit, "?"); !errors.Is(err, inference.ErrEmptyReply) {
		t.Errorf("empty answer error = %v", err)
	}
}

func TestMatch(t *testing.T) {
	available := catalog.Default().Exhibits()[:4]

	t.Run("parses list", func(t *testing.T) {
		llm := inference.NewReplyMock("1. Natural History Wing\n- \"Cosmos Exploration Room\" (space)\nAtlantis Hall")
		got, err := New(llm, WithMatchLimit(2)).Match(context.Background(), "big old bones and stars", available)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		want := []string{"Natural History Wing", "Cosmos Exploration Room", "Atlantis Hall"}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("Match = %q, want %q", got, want)
		}

		system := llm.LastCall().Request.Messages[0].Content
		if !strings.Contains(system, "- Renaissance Art Hall (da vinci)") || !strings.Contains(system, "up to 2 exhibits") {
			t.Errorf("prompt = %q", system)
		}
	})

	t.Run("none", func(t *testing.T) {
		got, err := New(inference.NewReplyMock("None.")).Match(context.Background(), "x", available)
		if err != nil || got != nil {
			t.Errorf("Match = %v, %v", got, err)
		}
	})

	t.Run("no exhibits skips call", func(t *testing.T) {
		llm := inference.NewMock()
		got, err := New(llm).Match(context.Background(), "x", nil)
		if err != nil || got != nil || llm.CallCount("Chat") != 0 {
			t.Errorf("Match = %v, %v, calls %d", got, err, llm.CallCount("Chat"))
		}
	})
}
