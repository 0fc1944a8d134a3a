// Package engine is the entry point for palette analysis. It wires the rate
// limiter, result cache and strategy resolver for URLs, and the extraction
// analyzer for images.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/jmylchreest/palettesniffer/internal/cache"
	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/config"
	"github.com/jmylchreest/palettesniffer/internal/extraction"
	"github.com/jmylchreest/palettesniffer/internal/image"
	"github.com/jmylchreest/palettesniffer/internal/ratelimit"
	"github.com/jmylchreest/palettesniffer/internal/resolver"
	"github.com/jmylchreest/palettesniffer/internal/security"
)

// ErrRateLimitExceeded is returned when a domain has used its request budget
// for the current window.
var ErrRateLimitExceeded = errors.New("rate limit exceeded, please wait before making another request")

// DefaultResolveTimeout bounds one URL resolution across all strategies and retries.
const DefaultResolveTimeout = 2 * time.Minute

// Result is the outcome of a URL analysis.
type Result struct {
	ID      string          `json:"id"`
	URL     string          `json:"url"`
	Source  string          `json:"source"`
	Cached  bool            `json:"cached"`
	Palette *colour.Palette `json:"palette"`
	Elapsed time.Duration   `json:"elapsed"`
}

// Metrics counts URL analyses.
type Metrics struct {
	Total               int64         `json:"totalRequests"`
	Successful          int64         `json:"successfulRequests"`
	Failed              int64         `json:"failedRequests"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
}

// Options assembles an Engine from its parts. Nil parts get defaults, except
// Resolver and Analyzer which are required for the analyses that use them.
type Options struct {
	Resolver *resolver.Resolver
	Analyzer *extraction.Analyzer
	Limiter  *ratelimit.Limiter
	Cache    *cache.ResultCache

	// BlockPrivateHosts rejects URLs pointing at local or private hosts.
	BlockPrivateHosts bool

	// ResolveTimeout bounds a shared URL resolution. Zero means DefaultResolveTimeout.
	ResolveTimeout time.Duration

	Logger hclog.Logger
}

// Engine analyses URLs and images. It is safe for concurrent use.
type Engine struct {
	resolver          *resolver.Resolver
	analyzer          *extraction.Analyzer
	limiter           *ratelimit.Limiter
	cache             *cache.ResultCache
	blockPrivateHosts bool
	resolveTimeout    time.Duration
	logger            hclog.Logger

	group   singleflight.Group
	channel *extraction.Channel

	mu      sync.Mutex
	metrics Metrics
}

// New creates an Engine from its parts.
func New(opts Options) *Engine {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(ratelimit.DefaultMaxRequests, ratelimit.DefaultWindow)
	}
	if opts.Cache == nil {
		opts.Cache = cache.New(cache.DefaultTTL, cache.DefaultMaxEntries)
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = DefaultResolveTimeout
	}
	return &Engine{
		resolver:          opts.Resolver,
		analyzer:          opts.Analyzer,
		limiter:           opts.Limiter,
		cache:             opts.Cache,
		blockPrivateHosts: opts.BlockPrivateHosts,
		resolveTimeout:    opts.ResolveTimeout,
		logger:            opts.Logger,
	}
}

// BuildOptions are the runtime collaborators NewFromConfig cannot read from
// configuration.
type BuildOptions struct {
	Logger hclog.Logger

	// Seed makes k-means deterministic when non-zero.
	Seed int64

	// Client overrides the HTTP client used by strategies.
	Client *http.Client
}

// NewFromConfig builds a fully wired Engine. Close releases its worker.
func NewFromConfig(cfg *config.Config, opts BuildOptions) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	alg := colour.Algorithm(cfg.Extraction.Algorithm)
	if _, err := colour.NewClusterer(alg, nil); err != nil {
		return nil, err
	}
	newClusterer := func() colour.Clusterer {
		var rng *rand.Rand
		if opts.Seed != 0 {
			rng = rand.New(rand.NewSource(opts.Seed))
		}
		c, _ := colour.NewClusterer(alg, rng)
		return c
	}

	channel := extraction.NewChannel(extraction.ChannelOptions{
		Workers: cfg.Extraction.Workers,
		Compute: extraction.DefaultCompute(newClusterer),
		Logger:  logger.Named("extraction"),
	})
	analyzer := extraction.NewAnalyzer(channel, newClusterer, cfg.Extraction.Options, logger.Named("extraction"))

	strategies, err := resolver.BuildStrategies(cfg.Resolver, resolver.Deps{
		Analyzer:     analyzer,
		Client:       opts.Client,
		Limiter:      resolver.NewLimiter(cfg.Resolver.RequestsPerSecond),
		MaxDimension: cfg.Extraction.MaxDimension,
		Logger:       logger.Named("resolver"),
	})
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to build strategies: %w", err)
	}

	e := New(Options{
		Resolver: resolver.New(strategies, resolver.Options{
			MaxRetries:  cfg.Resolver.MaxRetries,
			BackoffUnit: cfg.Resolver.BackoffUnit,
			Logger:      logger.Named("resolver"),
		}),
		Analyzer:          analyzer,
		Limiter:           ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		Cache:             cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		BlockPrivateHosts: cfg.Resolver.BlockPrivateHosts,
		Logger:            logger.Named("engine"),
	})
	e.channel = channel
	return e, nil
}

// Close stops the extraction worker, if the Engine owns one.
func (e *Engine) Close() {
	if e.channel != nil {
		e.channel.Close()
	}
}

// NormaliseURL trims whitespace, adds https:// when no http(s) scheme is
// present and removes one trailing slash.
func NormaliseURL(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	return strings.TrimSuffix(s, "/")
}

// AnalyzeURL returns the palette for a webpage. Requests are admitted per
// hostname, served from cache when fresh, and concurrent analyses of the same
// URL share one resolution. Validation, rate limiting and cancellation of ctx
// fail; otherwise the resolver always produces a palette.
func (e *Engine) AnalyzeURL(ctx context.Context, raw string) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	key := NormaliseURL(raw)
	logger := e.logger.With("analysis_id", id, "url", key)

	result, err := e.analyzeURL(ctx, id, key, logger)
	elapsed := time.Since(start)
	e.record(err == nil, elapsed)
	if err != nil {
		logger.Error("URL analysis failed", "error", err)
		return nil, fmt.Errorf("failed to analyze URL: %w", err)
	}
	result.Elapsed = elapsed
	logger.Info("URL analysed", "source", result.Source, "cached", result.Cached, "elapsed", elapsed)
	return result, nil
}

func (e *Engine) analyzeURL(ctx context.Context, id, key string, logger hclog.Logger) (*Result, error) {
	if err := security.ValidateTargetURL(key, e.blockPrivateHosts); err != nil {
		return nil, err
	}
	u, err := url.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if !e.limiter.Allow(u.Hostname()) {
		return nil, ErrRateLimitExceeded
	}

	if p, ok := e.cache.Get(key); ok {
		logger.Debug("returning cached result")
		return &Result{ID: id, URL: key, Source: "cache", Cached: true, Palette: p}, nil
	}

	if e.resolver == nil {
		return nil, errors.New("no resolver configured")
	}

	type resolved struct {
		palette *colour.Palette
		source  string
	}
	// The shared resolution outlives any single caller; each caller only
	// stops waiting when its own ctx ends.
	ch := e.group.DoChan(key, func() (any, error) {
		work, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.resolveTimeout)
		defer cancel()
		p, source := e.resolver.Resolve(work, key)
		if work.Err() == nil {
			e.cache.Set(key, p)
		} else {
			logger.Warn("resolution hit its deadline, result not cached", "source", source)
		}
		return resolved{p, source}, nil
	})

	select {
	case res := <-ch:
		r := res.Val.(resolved)
		if res.Shared {
			logger.Debug("joined an in-flight analysis")
		}
		return &Result{ID: id, URL: key, Source: r.source, Palette: r.palette}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AnalyzeImage extracts a tiered palette from decoded pixels.
func (e *Engine) AnalyzeImage(ctx context.Context, px *image.Pixels) (*colour.Palette, error) {
	if e.analyzer == nil {
		return nil, errors.New("no analyzer configured")
	}
	p, err := e.analyzer.ExtractImage(ctx, px)
	if err != nil {
		return nil, fmt.Errorf("failed to extract colours: %w", err)
	}
	return p, nil
}

// Metrics returns a snapshot of the URL analysis counters.
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}

// record updates counters and the running average response time.
func (e *Engine) record(success bool, elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := &e.metrics
	m.Total++
	if success {
		m.Successful++
	} else {
		m.Failed++
	}
	n := float64(m.Total)
	avg := (float64(m.AverageResponseTime)*(n-1) + float64(elapsed)) / n
	m.AverageResponseTime = time.Duration(avg)
}

// RemainingRequests reports how many more analyses of rawURL's host are
// currently admitted.
func (e *Engine) RemainingRequests(rawURL string) int {
	u, err := url.Parse(NormaliseURL(rawURL))
	if err != nil {
		return 0
	}
	return e.limiter.Remaining(u.Hostname())
}
