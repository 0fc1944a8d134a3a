package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/config"
	httputil "github.com/jmylchreest/palettesniffer/internal/util/http"
)

// NameMetadata is the metadata analysis strategy name.
const NameMetadata = "metadata-analysis"

// errNoMetadataColours is returned when neither the brand table nor the page's
// meta tags yield a colour.
var errNoMetadataColours = errors.New("no metadata colors found")

// MetadataStrategy uses the brand table, then the theme meta tags and CSS
// custom properties of the page fetched through a JSON relay.
type MetadataStrategy struct {
	cfg    config.MetadataConfig
	fetch  fetcher
	logger hclog.Logger
}

// newMetadataStrategy creates a MetadataStrategy.
func newMetadataStrategy(cfg config.MetadataConfig, fetch fetcher, logger hclog.Logger) *MetadataStrategy {
	return &MetadataStrategy{cfg: cfg, fetch: fetch, logger: logger}
}

// Name implements Strategy.
func (s *MetadataStrategy) Name() string { return NameMetadata }

// Execute implements Strategy.
func (s *MetadataStrategy) Execute(ctx context.Context, target string) (*colour.Palette, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("metadata analysis failed: %w", err)
	}
	if p, ok := BrandPalette(u.Hostname()); ok {
		return p, nil
	}

	p, err := s.metaColours(ctx, target)
	if err != nil {
		s.logger.Debug("meta color extraction failed", "error", err)
		return nil, fmt.Errorf("metadata analysis failed: %w", errNoMetadataColours)
	}
	return p, nil
}

type relayResponse struct {
	Contents string `json:"contents"`
}

func (s *MetadataStrategy) metaColours(ctx context.Context, target string) (*colour.Palette, error) {
	body, err := httputil.Fetch(ctx, s.cfg.Endpoint+url.QueryEscape(target), s.fetch.options(s.cfg.Timeout, nil))
	if err != nil {
		return nil, err
	}

	var relay relayResponse
	if err := json.Unmarshal(body, &relay); err != nil {
		return nil, fmt.Errorf("failed to decode relay response: %w", err)
	}

	doc, err := ParseHTML(relay.Contents)
	if err != nil {
		return nil, err
	}
	tally := CollectMetaColours(doc)
	if tally.Len() == 0 {
		return nil, errNoMetadataColours
	}
	return tally.Palette(), nil
}
