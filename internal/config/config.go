// Package config holds palettesniffer settings and loads them from defaults,
// a YAML file, the environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/extraction"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ExtractionConfig controls image sampling and the worker pool.
type ExtractionConfig struct {
	extraction.Options `yaml:",inline"`

	// Workers is the number of worker goroutines. Zero means one per CPU.
	Workers int `yaml:"workers"`

	// Algorithm selects the clusterer: kmeans or prominent.
	Algorithm string `yaml:"algorithm"`

	// MaxDimension is the longest edge images are scaled to before sampling.
	MaxDimension int `yaml:"max_dimension"`
}

// ResolverConfig controls the URL strategies.
type ResolverConfig struct {
	// External enables strategies that call third-party services. When false
	// only metadata heuristics run.
	External bool `yaml:"external"`

	MaxRetries  int           `yaml:"max_retries"`
	BackoffUnit time.Duration `yaml:"backoff_unit"`

	// RequestsPerSecond paces all outbound requests. Zero disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// BlockPrivateHosts rejects URLs that resolve to loopback or private hosts.
	BlockPrivateHosts bool `yaml:"block_private_hosts"`

	// UserAgent is sent when fetching pages directly and through proxies.
	UserAgent string `yaml:"user_agent"`

	Headless RenderConfig   `yaml:"headless"`
	SSR      RenderConfig   `yaml:"ssr"`
	CSS      CSSConfig      `yaml:"css"`
	Metadata MetadataConfig `yaml:"metadata"`
}

// RenderConfig describes a group of screenshot providers.
type RenderConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	Providers []Provider    `yaml:"providers"`
}

// Provider is a screenshot endpoint. Body is a text/template executed with
// the target URL as .URL; the json function quotes a value.
type Provider struct {
	Name     string            `yaml:"name"`
	Endpoint string            `yaml:"endpoint"`
	Method   string            `yaml:"method"`
	Headers  map[string]string `yaml:"headers"`
	Body     string            `yaml:"body"`
}

// CSSConfig controls HTML and stylesheet analysis.
type CSSConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Proxies        []Proxy       `yaml:"proxies"`
	ProxyTimeout   time.Duration `yaml:"proxy_timeout"`
	CrawlTimeout   time.Duration `yaml:"crawl_timeout"`
	MinHTMLLength  int           `yaml:"min_html_length"`
	MaxStylesheets int           `yaml:"max_stylesheets"`
}

// Proxy fetches a page on our behalf. The target URL is appended to Prefix,
// query-escaped when Escape is set.
type Proxy struct {
	Name    string            `yaml:"name"`
	Prefix  string            `yaml:"prefix"`
	Escape  bool              `yaml:"escape"`
	Headers map[string]string `yaml:"headers"`
}

// URL returns the proxied address for target.
func (p Proxy) URL(target string) string {
	if p.Escape {
		return p.Prefix + urlQueryEscape(target)
	}
	return p.Prefix + target
}

// MetadataConfig controls the metadata strategy's page fetch.
type MetadataConfig struct {
	// Endpoint returns JSON with the page HTML in a contents field. The
	// escaped target URL is appended.
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig controls the URL result cache.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// RateLimitConfig controls per-domain admission.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Extraction: ExtractionConfig{
			Options:      extraction.DefaultOptions(),
			Algorithm:    string(colour.AlgorithmKMeans),
			MaxDimension: 800,
		},
		Resolver: ResolverConfig{
			External:    true,
			MaxRetries:  2,
			BackoffUnit: time.Second,
			UserAgent:   browserUserAgent,
			Headless: RenderConfig{
				Timeout:   30 * time.Second,
				Providers: DefaultHeadlessProviders(),
			},
			SSR: RenderConfig{
				Timeout:   30 * time.Second,
				Providers: DefaultSSRProviders(),
			},
			CSS: CSSConfig{
				Enabled:        true,
				Proxies:        DefaultProxies(),
				ProxyTimeout:   15 * time.Second,
				CrawlTimeout:   20 * time.Second,
				MinHTMLLength:  500,
				MaxStylesheets: 5,
			},
			Metadata: MetadataConfig{
				Endpoint: "https://api.allorigins.win/get?url=",
				Timeout:  15 * time.Second,
			},
		},
		Cache: CacheConfig{
			TTL:        30 * time.Minute,
			MaxEntries: 100,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 10,
			Window:      time.Minute,
		},
	}
}

// DefaultHeadlessProviders returns the built-in headless browser screenshot APIs.
func DefaultHeadlessProviders() []Provider {
	jsonHeaders := map[string]string{"Content-Type": "application/json"}
	return []Provider{
		{
			Name:     "browserless",
			Endpoint: "https://chrome.browserless.io/screenshot",
			Method:   "POST",
			Headers:  map[string]string{"Content-Type": "application/json", "Cache-Control": "no-cache"},
			Body:     `{"url":{{json .URL}},"viewport":{"width":1280,"height":720},"waitFor":2000,"options":{"fullPage":false,"type":"png","quality":80}}`,
		},
		{
			Name:     "puppeteer-api",
			Endpoint: "https://api.puppeteer.dev/screenshot",
			Method:   "POST",
			Headers:  jsonHeaders,
			Body:     `{"url":{{json .URL}},"viewport":{"width":1280,"height":720},"waitUntil":"networkidle2","timeout":30000}`,
		},
		{
			Name:     "playwright-api",
			Endpoint: "https://api.playwright.dev/screenshot",
			Method:   "POST",
			Headers:  jsonHeaders,
			Body:     `{"url":{{json .URL}},"viewport":{"width":1280,"height":720},"waitForLoadState":"networkidle"}`,
		},
	}
}

// DefaultSSRProviders returns the built-in server-side rendering screenshot APIs.
func DefaultSSRProviders() []Provider {
	jsonHeaders := map[string]string{"Content-Type": "application/json"}
	return []Provider{
		{
			Name:     "render-api",
			Endpoint: "https://api.render.com/v1/services/screenshot",
			Method:   "POST",
			Headers:  jsonHeaders,
			Body:     `{"url":{{json .URL}},"viewport":{"width":1280,"height":720},"waitFor":3000}`,
		},
		{
			Name:     "vercel-api",
			Endpoint: "https://api.vercel.com/v1/screenshot",
			Method:   "POST",
			Headers:  jsonHeaders,
			Body:     `{"url":{{json .URL}},"width":1280,"height":720,"wait":3000}`,
		},
	}
}

// DefaultProxies returns the built-in CORS proxies, tried in order.
func DefaultProxies() []Proxy {
	return []Proxy{
		{
			Name:    "codetabs",
			Prefix:  "https://api.codetabs.com/v1/proxy?quest=",
			Escape:  true,
			Headers: map[string]string{"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"},
		},
		{
			Name:    "corsproxy.io",
			Prefix:  "https://corsproxy.io/?",
			Escape:  true,
			Headers: map[string]string{"User-Agent": browserUserAgent},
		},
		{
			Name:    "cors-anywhere",
			Prefix:  "https://cors-anywhere.herokuapp.com/",
			Headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
		},
	}
}

// LoadFile reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and reports the first problem found.
func (c *Config) Validate() error {
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("invalid log_level %q (valid: trace, debug, info, warn, error, off)", c.LogLevel)
	}
	if err := c.Extraction.validate(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Resolver.validate(); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries)
	}
	if c.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("rate_limit.max_requests must be at least 1, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
	}
	return nil
}

func (e ExtractionConfig) validate() error {
	switch {
	case e.K < 1:
		return fmt.Errorf("k must be at least 1, got %d", e.K)
	case e.SimplifiedK < 1:
		return fmt.Errorf("simplified_k must be at least 1, got %d", e.SimplifiedK)
	case e.AlphaThreshold < 0 || e.AlphaThreshold > 255:
		return fmt.Errorf("alpha_threshold must be in [0, 255], got %d", e.AlphaThreshold)
	case e.SampleStep < 1:
		return fmt.Errorf("sample_step must be at least 1, got %d", e.SampleStep)
	case e.FallbackStride < 1:
		return fmt.Errorf("fallback_stride must be at least 1, got %d", e.FallbackStride)
	case e.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", e.Workers)
	case e.MaxDimension < 1:
		return fmt.Errorf("max_dimension must be at least 1, got %d", e.MaxDimension)
	case !colour.IsValidAlgorithm(colour.Algorithm(e.Algorithm)):
		return fmt.Errorf("unknown algorithm %q (valid: %v)", e.Algorithm, colour.ValidAlgorithms())
	}
	return nil
}

func (r ResolverConfig) validate() error {
	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", r.MaxRetries)
	}
	if r.BackoffUnit < 0 {
		return fmt.Errorf("backoff_unit must not be negative, got %s", r.BackoffUnit)
	}
	if r.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative, got %g", r.RequestsPerSecond)
	}
	for group, rc := range map[string]RenderConfig{"headless": r.Headless, "ssr": r.SSR} {
		if !rc.Enabled {
			continue
		}
		if rc.Timeout <= 0 {
			return fmt.Errorf("%s.timeout must be positive", group)
		}
		for i, p := range rc.Providers {
			if err := p.validate(); err != nil {
				return fmt.Errorf("%s.providers[%d]: %w", group, i, err)
			}
		}
	}
	if r.CSS.Enabled {
		if r.CSS.ProxyTimeout <= 0 || r.CSS.CrawlTimeout <= 0 {
			return errors.New("css timeouts must be positive")
		}
		for i, p := range r.CSS.Proxies {
			if p.Name == "" || p.Prefix == "" {
				return fmt.Errorf("css.proxies[%d]: name and prefix are required", i)
			}
		}
	}
	if r.Metadata.Endpoint == "" {
		return errors.New("metadata.endpoint is required")
	}
	return nil
}

func (p Provider) validate() error {
	if p.Name == "" || p.Endpoint == "" {
		return errors.New("name and endpoint are required")
	}
	if _, err := ParseBodyTemplate(p.Body); err != nil {
		return fmt.Errorf("%s: invalid body template: %w", p.Name, err)
	}
	return nil
}

// ParseBodyTemplate parses a provider body template.
func ParseBodyTemplate(body string) (*template.Template, error) {
	return template.New("body").Funcs(template.FuncMap{"json": jsonQuote}).Parse(body)
}

// Level returns the configured hclog level.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(strings.ToLower(c.LogLevel))
}
