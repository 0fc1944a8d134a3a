// Package resolver turns a webpage URL into a palette by trying a fixed chain
// of strategies with retry and backoff, ending in a deterministic fallback.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// SourceFallback is reported when no strategy produced a palette.
const SourceFallback = "fallback"

// ErrStrategiesExhausted is returned internally when every strategy failed.
var ErrStrategiesExhausted = errors.New("all strategies failed")

// errInvalidPalette marks an attempt whose result failed sanitisation.
var errInvalidPalette = errors.New("strategy returned an invalid palette")

// Strategy produces a palette for a URL or fails.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, url string) (*colour.Palette, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc struct {
	StrategyName string
	Fn           func(ctx context.Context, url string) (*colour.Palette, error)
}

// Name returns the strategy name.
func (s StrategyFunc) Name() string { return s.StrategyName }

// Execute calls the function.
func (s StrategyFunc) Execute(ctx context.Context, url string) (*colour.Palette, error) {
	return s.Fn(ctx, url)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options controls retries.
type Options struct {
	// MaxRetries is the number of retries after the first attempt of each strategy.
	MaxRetries int

	// BackoffUnit is multiplied by 2^i before retry i.
	BackoffUnit time.Duration

	// Sleep waits between attempts. Nil uses SleepContext.
	Sleep Sleeper

	Logger hclog.Logger
}

// DefaultOptions returns two retries with a one second backoff unit.
func DefaultOptions() Options {
	return Options{MaxRetries: 2, BackoffUnit: time.Second}
}

// Resolver runs strategies in order until one yields a valid palette.
type Resolver struct {
	strategies []Strategy
	opts       Options
	logger     hclog.Logger
}

// New creates a Resolver. The strategy list is copied.
func New(strategies []Strategy, opts Options) *Resolver {
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}
	opts.MaxRetries = max(opts.MaxRetries, 0)
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{
		strategies: append([]Strategy(nil), strategies...),
		opts:       opts,
		logger:     logger,
	}
}

// Strategies returns the strategy names in execution order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the first valid palette and the name of the strategy that
// produced it. When every strategy fails it returns the fallback palette for
// url with source "fallback". It never fails.
func (r *Resolver) Resolve(ctx context.Context, url string) (*colour.Palette, string) {
	palette, source, err := r.resolve(ctx, url)
	if err == nil {
		return palette, source
	}
	r.logger.Warn("all strategies failed, using fallback palette", "url", url, "error", err)
	return GenerateFallbackPalette(url), SourceFallback
}

func (r *Resolver) resolve(ctx context.Context, url string) (*colour.Palette, string, error) {
	var lastErr error
	for i, s := range r.strategies {
		palette, err := r.run(ctx, s, url)
		if err == nil {
			r.logger.Debug("strategy succeeded", "strategy", s.Name(), "index", i+1)
			return palette, s.Name(), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		return nil, "", ErrStrategiesExhausted
	}
	return nil, "", fmt.Errorf("%w: %w", ErrStrategiesExhausted, lastErr)
}

// run makes up to MaxRetries+1 attempts with s.
func (r *Resolver) run(ctx context.Context, s Strategy, url string) (*colour.Palette, error) {
	var lastErr error
	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * r.opts.BackoffUnit
			if err := r.opts.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		palette, err := s.Execute(ctx, url)
		if err == nil {
			if clean, ok := colour.Sanitise(palette); ok {
				return clean, nil
			}
			err = errInvalidPalette
		}
		lastErr = err
		r.logger.Debug("strategy attempt failed", "strategy", s.Name(), "attempt", attempt+1, "error", err)

		if IsNonRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt == r.opts.MaxRetries {
			r.logger.Info("strategy exhausted retries", "strategy", s.Name(), "attempts", attempt+1)
		}
	}
	return nil, lastErr
}

var nonRetryablePatterns = []string{
	"CORS",
	"Access-Control-Allow-Origin",
	"cross-origin",
	"blocked by CORS policy",
	"NetworkError",
	"TypeError",
	"ReferenceError",
}

// IsNonRetryable reports whether err's message or class name contains a
// pattern that retrying cannot fix. An error's class name is the result of a
// Name() string method anywhere in its chain.
func IsNonRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	var named interface{ Name() string }
	name := ""
	if errors.As(err, &named) {
		name = named.Name()
	}
	for _, p := range nonRetryablePatterns {
		if strings.Contains(msg, p) || strings.Contains(name, p) {
			return true
		}
	}
	return false
}
