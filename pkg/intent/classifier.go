package intent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrUnexpectedReply is returned when a judge reply is outside {vague, specific}.
var ErrUnexpectedReply = errors.New("intent: unexpected classification reply")

// Judge decides whether free text names a specific interest.
// Implementations call a language model; see guide.Guide.
type Judge interface {
	Judge(ctx context.Context, utterance string) (Interest, error)
}

// JudgeFunc adapts a function to Judge.
type JudgeFunc func(ctx context.Context, utterance string) (Interest, error)

// Judge calls f.
func (f JudgeFunc) Judge(ctx context.Context, utterance string) (Interest, error) {
	return f(ctx, utterance)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithJudge sets the fallback judge used by Resolve.
func WithJudge(j Judge) Option {
	return func(c *Classifier) { c.judge = j }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l.With("component", "intent.classifier") }
}

// Classifier maps utterances to dialogue acts. It is safe for concurrent use.
type Classifier struct {
	rules  []compiled
	judge  Judge
	logger *slog.Logger
}

// NewClassifier builds a classifier over rules. Nil rules selects DefaultRules.
func NewClassifier(rules Rules, opts ...Option) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	c := &Classifier{
		rules:  compile(rules),
		logger: slog.Default().With("component", "intent.classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify applies the keyword table only. Blank input is Unrecognized and text
// that matches no rule is Other. In a question only multi-word phrases count,
// so "is it ok to take photos?" stays a question for the guide.
func (c *Classifier) Classify(utterance string) Act {
	if strings.TrimSpace(utterance) == "" {
		return Unrecognized
	}
	words := tokenize(utterance)
	if len(words) == 0 {
		return Unrecognized
	}
	question := isQuestion(utterance, words)

	for _, r := range c.rules {
		for _, p := range r.phrases {
			if question && len(p) == 1 {
				continue
			}
			if containsPhrase(words, p) {
				return r.act
			}
		}
	}
	return Other
}

// Resolve is Classify plus the judge fallback: when no keyword matched, the
// judge decides between Unsure (vague) and Other (specific). A missing judge,
// a judge error or an unexpected reply leaves the keyword result in place.
func (c *Classifier) Resolve(ctx context.Context, utterance string) Act {
	act := c.Classify(utterance)
	if act != Other || c.judge == nil {
		return act
	}

	interest, err := c.judge.Judge(ctx, utterance)
	if err != nil {
		c.logger.Warn("interest judge unavailable, using keyword result", "error", err)
		return act
	}

	switch interest {
	case InterestVague:
		return Unsure
	case InterestSpecific:
		return Other
	default:
		c.logger.Warn("interest judge returned no label, using keyword result", "interest", interest.String())
		return act
	}
}
