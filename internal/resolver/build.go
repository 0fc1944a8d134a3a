package resolver

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/palettesniffer/internal/config"
	"github.com/jmylchreest/palettesniffer/internal/image"
)

// Deps are the collaborators strategies need.
type Deps struct {
	// Analyzer extracts colours from screenshots. Required when a render
	// strategy is enabled.
	Analyzer BlobAnalyzer

	// Client overrides the HTTP client.
	Client *http.Client

	// Limiter paces every outbound request when set.
	Limiter *rate.Limiter

	// MaxDimension bounds screenshots before sampling.
	MaxDimension int

	Logger hclog.Logger
}

// NewLimiter returns an outbound limiter for rps requests per second, or nil
// when rps is not positive.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// BuildStrategies returns the enabled strategies in their fixed order:
// headless, ssr, css-analysis, then metadata-analysis, which is always last.
// With external extraction disabled only metadata-analysis is returned.
func BuildStrategies(cfg config.ResolverConfig, deps Deps) ([]Strategy, error) {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if deps.MaxDimension <= 0 {
		deps.MaxDimension = image.DefaultMaxDimension
	}
	fetch := fetcher{client: deps.Client, limiter: deps.Limiter, userAgent: cfg.UserAgent}

	var strategies []Strategy
	if cfg.External {
		for _, group := range []struct {
			name string
			cfg  config.RenderConfig
		}{
			{NameHeadless, cfg.Headless},
			{NameSSR, cfg.SSR},
		} {
			if !group.cfg.Enabled || len(group.cfg.Providers) == 0 {
				continue
			}
			if deps.Analyzer == nil {
				return nil, fmt.Errorf("%s strategy needs an analyzer", group.name)
			}
			s, err := newRenderStrategy(group.name, group.cfg, deps.Analyzer, deps.MaxDimension, fetch, logger.Named(group.name))
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, s)
		}
		if cfg.CSS.Enabled {
			strategies = append(strategies, newCSSStrategy(cfg.CSS, fetch, logger.Named("css")))
		}
	}
	strategies = append(strategies, newMetadataStrategy(cfg.Metadata, fetch, logger.Named("metadata")))
	return strategies, nil
}
