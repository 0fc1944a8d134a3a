package resolver

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/config"
	"github.com/jmylchreest/palettesniffer/internal/image"
	httputil "github.com/jmylchreest/palettesniffer/internal/util/http"
)

// Render strategy names.
const (
	NameHeadless = "headless"
	NameSSR      = "ssr"
)

// BlobAnalyzer extracts a palette from a rendered screenshot.
type BlobAnalyzer interface {
	ExtractBlob(ctx context.Context, px *image.Pixels) (*colour.Palette, error)
}

type renderProvider struct {
	config.Provider
	body *template.Template
}

// RenderStrategy asks screenshot providers to render the page and extracts
// colours from the first image returned.
type RenderStrategy struct {
	name         string
	providers    []renderProvider
	timeout      time.Duration
	maxDimension int
	analyzer     BlobAnalyzer
	fetch        fetcher
	logger       hclog.Logger
}

// newRenderStrategy creates a RenderStrategy. Provider body templates are
// parsed up front.
func newRenderStrategy(name string, cfg config.RenderConfig, analyzer BlobAnalyzer, maxDimension int, fetch fetcher, logger hclog.Logger) (*RenderStrategy, error) {
	providers := make([]renderProvider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		tmpl, err := config.ParseBodyTemplate(p.Body)
		if err != nil {
			return nil, fmt.Errorf("provider %s: invalid body template: %w", p.Name, err)
		}
		providers = append(providers, renderProvider{Provider: p, body: tmpl})
	}
	return &RenderStrategy{
		name:         name,
		providers:    providers,
		timeout:      cfg.Timeout,
		maxDimension: maxDimension,
		analyzer:     analyzer,
		fetch:        fetch,
		logger:       logger,
	}, nil
}

// Name implements Strategy.
func (s *RenderStrategy) Name() string { return s.name }

// Execute implements Strategy.
func (s *RenderStrategy) Execute(ctx context.Context, target string) (*colour.Palette, error) {
	for _, p := range s.providers {
		palette, err := s.tryProvider(ctx, p, target)
		if err != nil {
			s.logger.Debug("render provider failed", "provider", p.Name, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		return palette, nil
	}
	return nil, fmt.Errorf("all %s providers failed", s.name)
}

func (s *RenderStrategy) tryProvider(ctx context.Context, p renderProvider, target string) (*colour.Palette, error) {
	var body bytes.Buffer
	if err := p.body.Execute(&body, struct{ URL string }{target}); err != nil {
		return nil, fmt.Errorf("failed to render request body: %w", err)
	}

	opts := s.fetch.options(s.timeout, p.Headers)
	opts.Method = p.Method
	opts.Body = body.Bytes()
	resp, err := httputil.Do(ctx, p.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("empty screenshot")
	}

	px, err := image.DecodePixels(resp.Body, s.maxDimension, true)
	if err != nil {
		return nil, err
	}
	return s.analyzer.ExtractBlob(ctx, px)
}
