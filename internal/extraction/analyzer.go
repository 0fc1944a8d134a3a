package extraction

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/image"
)

// Options controls sampling and clustering for both extraction paths.
type Options struct {
	// K is the cluster count for the worker and the primary fallback.
	K int `yaml:"k"`

	// SimplifiedK is the cluster count for the simplified blob fallback.
	SimplifiedK int `yaml:"simplified_k"`

	// AlphaThreshold is the minimum alpha (exclusive) for a pixel to be sampled.
	AlphaThreshold int `yaml:"alpha_threshold"`

	// SampleStep is the pixel stride used by the worker.
	SampleStep int `yaml:"sample_step"`

	// FallbackStride is the pixel stride used by both synchronous fallbacks.
	FallbackStride int `yaml:"fallback_stride"`
}

// DefaultOptions returns the standard extraction options.
func DefaultOptions() Options {
	return Options{
		K:              32,
		SimplifiedK:    8,
		AlphaThreshold: colour.DefaultAlphaThreshold,
		SampleStep:     colour.DefaultSampleStep,
		FallbackStride: 4,
	}
}

// Analyzer turns pixel buffers into palettes. It prefers the offload channel
// and silently re-runs on the calling goroutine when the channel fails.
type Analyzer struct {
	channel      *Channel
	newClusterer func() colour.Clusterer
	opts         Options
	logger       hclog.Logger
}

// NewAnalyzer creates an Analyzer. A nil channel means every extraction runs
// synchronously. A nil newClusterer uses time-seeded k-means.
func NewAnalyzer(channel *Channel, newClusterer func() colour.Clusterer, opts Options, logger hclog.Logger) *Analyzer {
	if newClusterer == nil {
		newClusterer = func() colour.Clusterer { return colour.NewKMeansClusterer(nil) }
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Analyzer{
		channel:      channel,
		newClusterer: newClusterer,
		opts:         opts,
		logger:       logger,
	}
}

// ExtractImage extracts a tiered palette from a decoded image. The fallback
// uses the primary floor.
func (a *Analyzer) ExtractImage(ctx context.Context, px *image.Pixels) (*colour.Palette, error) {
	records, err := a.extract(ctx, px, colour.ExtractOptions{
		K:              a.opts.K,
		AlphaThreshold: a.opts.AlphaThreshold,
		SampleStep:     a.opts.FallbackStride,
		Floor:          colour.PrimaryFrequencyFloor,
	})
	if err != nil {
		return nil, err
	}
	return colour.CategoriseTiered(records), nil
}

// ExtractBlob extracts a tiered palette from a rendered screenshot. The
// fallback is the simplified path with fewer clusters and a higher floor.
func (a *Analyzer) ExtractBlob(ctx context.Context, px *image.Pixels) (*colour.Palette, error) {
	records, err := a.extract(ctx, px, colour.ExtractOptions{
		K:              a.opts.SimplifiedK,
		AlphaThreshold: a.opts.AlphaThreshold,
		SampleStep:     a.opts.FallbackStride,
		Floor:          colour.SimplifiedFrequencyFloor,
	})
	if err != nil {
		return nil, err
	}
	return colour.CategoriseTiered(records), nil
}

func (a *Analyzer) extract(ctx context.Context, px *image.Pixels, fallback colour.ExtractOptions) ([]colour.ColorRecord, error) {
	if px == nil {
		return nil, errors.New("no pixel data")
	}

	if a.channel != nil {
		owned := px.Clone()
		records, err := a.channel.Analyze(ctx, Request{
			Width:          owned.Width,
			Height:         owned.Height,
			Buffer:         owned.Buf,
			K:              a.opts.K,
			AlphaThreshold: a.opts.AlphaThreshold,
			SampleStep:     a.opts.SampleStep,
		})
		if err == nil {
			return records, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Debug("worker extraction failed, extracting inline", "error", err)
	}

	return colour.Extract(px.Buf, fallback, a.newClusterer()), nil
}
