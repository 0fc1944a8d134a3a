package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/config"
)

// NameCSS is the CSS analysis strategy name.
const NameCSS = "css-analysis"

// CSSStrategy analyses page HTML and stylesheets. It tries, in order: CORS
// proxies then a direct fetch, a stylesheet crawl, and a plain fetch-and-parse.
type CSSStrategy struct {
	cfg    config.CSSConfig
	fetch  fetcher
	logger hclog.Logger
}

// newCSSStrategy creates a CSSStrategy.
func newCSSStrategy(cfg config.CSSConfig, fetch fetcher, logger hclog.Logger) *CSSStrategy {
	return &CSSStrategy{cfg: cfg, fetch: fetch, logger: logger}
}

// Name implements Strategy.
func (s *CSSStrategy) Name() string { return NameCSS }

// Execute implements Strategy.
func (s *CSSStrategy) Execute(ctx context.Context, target string) (*colour.Palette, error) {
	methods := []struct {
		name string
		run  func(context.Context, string) (*colour.Palette, error)
	}{
		{"proxy", s.viaProxies},
		{"stylesheet-crawl", s.crawlStylesheets},
		{"fetch-and-parse", s.fetchAndParse},
	}

	for _, m := range methods {
		palette, err := m.run(ctx, target)
		if err != nil {
			s.logger.Debug("css method failed", "method", m.name, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if clean, ok := colour.Sanitise(palette); ok {
			return clean, nil
		}
	}
	return nil, errors.New("advanced CSS analysis failed: all CSS analysis methods failed")
}

// viaProxies fetches the page through each proxy in turn, accepting the first
// response long enough to be a real page, then falls back to a direct fetch.
func (s *CSSStrategy) viaProxies(ctx context.Context, target string) (*colour.Palette, error) {
	for _, p := range s.cfg.Proxies {
		html, err := s.fetch.text(ctx, p.URL(target), s.cfg.ProxyTimeout, p.Headers)
		if err != nil {
			s.logger.Debug("proxy failed", "proxy", p.Name, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if len(html) > s.cfg.MinHTMLLength {
			s.logger.Debug("proxy succeeded", "proxy", p.Name, "length", len(html))
			return AnalyzeHTML(html)
		}
	}

	html, err := s.fetch.text(ctx, target, s.cfg.ProxyTimeout, nil)
	if err != nil {
		return nil, fmt.Errorf("all fetch methods failed: %w", err)
	}
	return AnalyzeHTML(html)
}

// crawlStylesheets fetches the page and its linked stylesheets and tallies
// colours from both.
func (s *CSSStrategy) crawlStylesheets(ctx context.Context, target string) (*colour.Palette, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CrawlTimeout)
	defer cancel()

	html, err := s.fetch.text(ctx, target, s.cfg.CrawlTimeout, nil)
	if err != nil {
		return nil, err
	}
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}
	tally := CollectColours(doc)

	base, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	links := StylesheetLinks(doc)
	if len(links) > s.cfg.MaxStylesheets {
		links = links[:s.cfg.MaxStylesheets]
	}
	for _, href := range links {
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		sheet := base.ResolveReference(ref).String()
		css, err := s.fetch.text(ctx, sheet, s.cfg.CrawlTimeout, nil)
		if err != nil {
			s.logger.Debug("stylesheet fetch failed", "href", sheet, "error", err)
			continue
		}
		colour.ParseStyleColours(css, tally)
		addCustomProperties(css, tally)
	}

	return tally.Palette(), nil
}

// fetchAndParse fetches the page directly and analyses its HTML.
func (s *CSSStrategy) fetchAndParse(ctx context.Context, target string) (*colour.Palette, error) {
	html, err := s.fetch.text(ctx, target, s.cfg.ProxyTimeout, nil)
	if err != nil {
		return nil, fmt.Errorf("direct fetch failed: %w", err)
	}
	return AnalyzeHTML(html)
}
