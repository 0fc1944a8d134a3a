package resolver

import (
	"context"
	"maps"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	httputil "github.com/jmylchreest/palettesniffer/internal/util/http"
)

// fetcher carries the HTTP settings shared by every strategy.
type fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func (f fetcher) options(timeout time.Duration, headers map[string]string) httputil.FetchOptions {
	h := make(map[string]string, len(headers)+1)
	if f.userAgent != "" {
		h["User-Agent"] = f.userAgent
	}
	maps.Copy(h, headers)
	return httputil.FetchOptions{
		Timeout: timeout,
		Headers: h,
		Limiter: f.limiter,
		Client:  f.client,
	}
}

// text fetches a page as UTF-8 text.
func (f fetcher) text(ctx context.Context, url string, timeout time.Duration, headers map[string]string) (string, error) {
	return httputil.FetchText(ctx, url, f.options(timeout, headers))
}
