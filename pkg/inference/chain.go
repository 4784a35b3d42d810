package inference

import (
	"context"
	"errors"
	"log/slog"
)

// Chain answers with the first provider that succeeds. The app builds one
// when a fallback model is configured, so a rate-limited or failing primary
// model degrades to the fallback instead of to canned lines.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain chains providers in priority order.
func NewChain(providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrProviderUnavailable
	}
	return &Chain{
		providers: providers,
		logger:    slog.Default().With("component", "inference.chain"),
	}, nil
}

// SetLogger replaces the chain's logger.
func (c *Chain) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l.With("component", "inference.chain")
	}
}

// Chat asks each provider in turn. Cancellation stops the walk.
func (c *Chain) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	errs := make([]error, 0, len(c.providers))
	for i, p := range c.providers {
		resp, err := p.Chat(ctx, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("answered by fallback model", "position", i)
			}
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = append(errs, err)

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
			c.logger.Warn("model rate limited, falling back", "position", i)
		} else {
			c.logger.Warn("model failed, falling back", "position", i, "error", err)
		}
	}
	return nil, &ChainError{Errors: errs}
}

// Health reports an error only when no provider is reachable.
func (c *Chain) Health(ctx context.Context) error {
	var errs []error
	for _, p := range c.providers {
		err := p.Health(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return &ChainError{Errors: errs}
}

// Close closes every provider and joins their errors.
func (c *Chain) Close() error {
	var errs []error
	for _, p := range c.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

var _ Provider = (*Chain)(nil)
