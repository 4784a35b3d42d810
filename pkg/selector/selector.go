// Package selector chooses which exhibits a tour visits.
//
// Selection is a keyword scan over the catalog in order, an optional Matcher
// consulted when the keywords find nothing, and uniform random padding up to the
// requested count. Exhibits in the exclusion set are never returned unless
// revisits are enabled and the whole catalog is excluded.
package selector

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/teslashibe/go-docent/pkg/catalog"
)

// ErrExhausted is returned when every exhibit is excluded.
var ErrExhausted = errors.New("selector: all exhibits visited")

// Matcher picks exhibits for free text when no keyword matched.
// It may return names in any case; unknown names are discarded.
type Matcher interface {
	Match(ctx context.Context, text string, available []catalog.Exhibit) ([]string, error)
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source used for padding and shuffles.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) { s.rng = r }
}

// WithMatcher sets the free-text matcher.
func WithMatcher(m Matcher) Option {
	return func(s *Selector) { s.matcher = m }
}

// WithRevisit allows selecting already visited exhibits once the catalog is exhausted.
func WithRevisit(allow bool) Option {
	return func(s *Selector) { s.revisit = allow }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) { s.logger = l.With("component", "selector") }
}

// Selector picks exhibits from a catalog.
type Selector struct {
	catalog *catalog.Catalog
	matcher Matcher
	revisit bool
	logger  *slog.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a selector over c.
func New(c *catalog.Catalog, opts ...Option) *Selector {
	s := &Selector{
		catalog: c,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  slog.Default().With("component", "selector"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the underlying catalog.
func (s *Selector) Catalog() *catalog.Catalog {
	return s.catalog
}

// Select returns up to n distinct exhibit names for text, skipping excluding.
// Keyword matches come first in catalog order; the rest is random padding.
func (s *Selector) Select(ctx context.Context, text string, excluding catalog.Set, n int) ([]string, error) {
	excluding, err := s.effectiveExclusion(excluding)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	lowered := strings.ToLower(text)
	chosen := make([]string, 0, n)
	taken := catalog.NewSet()

	for _, e := range s.catalog.Available(excluding) {
		if len(chosen) == n {
			break
		}
		if e.Matches(lowered) {
			chosen = append(chosen, e.Name)
			taken.Add(e.Name)
		}
	}

	if len(chosen) == 0 && s.matcher != nil && strings.TrimSpace(text) != "" {
		for _, name := range s.match(ctx, text, excluding, n) {
			chosen = append(chosen, name)
			taken.Add(name)
		}
	}

	matched := len(chosen)
	if pad := n - len(chosen); pad > 0 {
		chosen = append(chosen, s.sample(pad, excluding.Union(taken))...)
	}

	s.logger.Debug("selected exhibits",
		"matched", matched,
		"padded", len(chosen)-matched,
		"exhibits", chosen)
	return chosen, nil
}

// Random returns up to n distinct exhibits sampled uniformly, skipping excluding.
func (s *Selector) Random(excluding catalog.Set, n int) ([]string, error) {
	excluding, err := s.effectiveExclusion(excluding)
	if err != nil {
		return nil, err
	}
	return s.sample(n, excluding), nil
}

// Candidates returns every available exhibit in random order.
func (s *Selector) Candidates(excluding catalog.Set) ([]string, error) {
	excluding, err := s.effectiveExclusion(excluding)
	if err != nil {
		return nil, err
	}
	return s.sample(s.catalog.Len(), excluding), nil
}

// effectiveExclusion applies the exhaustion policy.
func (s *Selector) effectiveExclusion(excluding catalog.Set) (catalog.Set, error) {
	if len(s.catalog.Available(excluding)) > 0 {
		return excluding, nil
	}
	if s.revisit {
		s.logger.Info("catalog exhausted, allowing revisits")
		return nil, nil
	}
	return nil, ErrExhausted
}

// match asks the matcher and keeps only known, available, distinct names.
func (s *Selector) match(ctx context.Context, text string, excluding catalog.Set, n int) []string {
	available := s.catalog.Available(excluding)
	names, err := s.matcher.Match(ctx, text, available)
	if err != nil {
		s.logger.Warn("matcher failed, falling back to random", "error", err)
		return nil
	}

	out := make([]string, 0, n)
	seen := catalog.NewSet()
	for _, raw := range names {
		if len(out) == n {
			break
		}
		e, ok := s.catalog.Lookup(raw)
		if !ok {
			s.logger.Debug("matcher returned unknown exhibit", "name", raw)
			continue
		}
		if excluding.Has(e.Name) || seen.Has(e.Name) {
			continue
		}
		seen.Add(e.Name)
		out = append(out, e.Name)
	}
	return out
}

func (s *Selector) sample(n int, excluding catalog.Set) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Sample(s.rng, n, excluding)
}
