// Package guide holds the language-model side of the tour: judging how specific
// a visitor's interest is, matching free text to exhibits, writing the tour
// intro and answering questions at an exhibit.
package guide

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/inference"
	"github.com/teslashibe/go-docent/pkg/intent"
	"github.com/teslashibe/go-docent/pkg/selector"
)

// Option configures a Guide.
type Option func(*Guide)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guide) { g.logger = l.With("component", "guide") }
}

// WithMatchLimit caps how many exhibits Match asks for.
func WithMatchLimit(n int) Option {
	return func(g *Guide) { g.matchLimit = n }
}

// Guide issues single-turn prompts to a chat provider.
type Guide struct {
	llm        inference.Provider
	matchLimit int
	logger     *slog.Logger
}

// New creates a guide backed by llm.
func New(llm inference.Provider, opts ...Option) *Guide {
	g := &Guide{
		llm:        llm,
		matchLimit: 3,
		logger:     slog.Default().With("component", "guide"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Judge classifies utterance as vague or specific. Replies outside that pair
// are reported as intent.ErrUnexpectedReply.
func (g *Guide) Judge(ctx context.Context, utterance string) (intent.Interest, error) {
	reply, err := inference.Complete(ctx, g.llm, judgePrompt, utterance,
		inference.MaxTokens(5), inference.Temperature(0.01))
	if err != nil {
		return intent.InterestUnknown, fmt.Errorf("guide: judge: %w", err)
	}

	interest, err := intent.ParseInterest(reply)
	if err != nil {
		return intent.InterestUnknown, err
	}
	g.logger.Debug("judged interest", "utterance", utterance, "interest", interest.String())
	return interest, nil
}

// Intro writes a short welcome that names the stops.
func (g *Guide) Intro(ctx context.Context, stops []string) (string, error) {
	if len(stops) == 0 {
		return "", fmt.Errorf("guide: intro needs at least one stop")
	}
	system := fmt.Sprintf(introPrompt, strings.Join(stops, ", "))
	reply, err := inference.Complete(ctx, g.llm, system, "Introduce the tour.", inference.MaxTokens(120))
	if err != nil {
		return "", fmt.Errorf("guide: intro: %w", err)
	}
	return reply, nil
}

// Answer responds to a visitor question about exhibit.
func (g *Guide) Answer(ctx context.Context, exhibit catalog.Exhibit, question string) (string, error) {
	background := ""
	if exhibit.Description != "" {
		background = "Background: " + exhibit.Description + " "
	}
	system := fmt.Sprintf(answerPrompt, exhibit.Name, background)

	reply, err := inference.Complete(ctx, g.llm, system, question, inference.MaxTokens(150))
	if err != nil {
		return "", fmt.Errorf("guide: answer: %w", err)
	}
	return reply, nil
}

// Match asks the model which of the available exhibits fit text. The returned
// names are unvalidated; the selector checks them against the catalog.
func (g *Guide) Match(ctx context.Context, text string, available []catalog.Exhibit) ([]string, error) {
	if len(available) == 0 {
		return nil, nil
	}

	var list strings.Builder
	for _, e := range available {
		fmt.Fprintf(&list, "- %s (%s)\n", e.Name, strings.Join(e.Keywords, ", "))
	}
	system := fmt.Sprintf(matchPrompt, strings.TrimRight(list.String(), "\n"), g.matchLimit)

	reply, err := inference.Complete(ctx, g.llm, system, text,
		inference.MaxTokens(80), inference.Temperature(0.01))
	if err != nil {
		return nil, fmt.Errorf("guide: match: %w", err)
	}

	names := parseNames(reply)
	g.logger.Debug("matched exhibits", "text", text, "names", names)
	return names, nil
}

// parseNames splits a list reply into names, dropping bullets and numbering.
func parseNames(reply string) []string {
	if strings.EqualFold(strings.Trim(strings.TrimSpace(reply), "'\"."), "none") {
		return nil
	}

	var out []string
	for _, line := range strings.FieldsFunc(reply, func(r rune) bool { return r == '\n' || r == ',' || r == ';' }) {
		name := strings.TrimSpace(line)
		name = strings.TrimLeft(name, "-*•0123456789.) ")
		if i := strings.Index(name, " ("); i > 0 {
			name = name[:i]
		}
		name = strings.Trim(name, "'\"` ")
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

var (
	_ intent.Judge     = (*Guide)(nil)
	_ selector.Matcher = (*Guide)(nil)
)
