// Package http provides HTTP utilities for fetching remote resources.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/palettesniffer/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxBodySize caps how much of a response body is read.
	MaxBodySize = 20 << 20
)

// FetchOptions configures HTTP fetch behaviour.
type FetchOptions struct {
	// Timeout specifies the HTTP request timeout.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration

	// Method defaults to GET, or POST when Body is set.
	Method string

	// Body is sent as the request body when non-nil.
	Body []byte

	// Headers specifies additional HTTP headers to send with the request.
	Headers map[string]string

	// Limiter paces outbound requests when set.
	Limiter *rate.Limiter

	// Client overrides the default client. Its Timeout is ignored in favour of Timeout.
	Client *http.Client

	// MaxBodySize overrides the package MaxBodySize when positive.
	MaxBodySize int64
}

// ErrBodyTooLarge is returned when a response body exceeds the size cap.
var ErrBodyTooLarge = errors.New("response too large")

// NetworkError reports a transport-level failure: DNS, dial, TLS or timeout.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("NetworkError: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Name returns the error class name.
func (e *NetworkError) Name() string { return "NetworkError" }

// StatusError reports a non-200 response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Response is a fetched body with its content type.
type Response struct {
	Body        []byte
	ContentType string
}

// Do performs the request described by opts and returns the body.
// It sets the User-Agent header and treats any non-200 status as an error.
func Do(ctx context.Context, url string, opts FetchOptions) (*Response, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if opts.Limiter != nil {
		if err := opts.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("outbound rate limit wait: %w", err)
		}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if opts.Body != nil {
			method = http.MethodPost
		}
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	limit := int64(MaxBodySize)
	if opts.MaxBodySize > 0 {
		limit = opts.MaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &NetworkError{URL: url, Err: err}
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, limit)
	}

	return &Response{Body: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Fetch retrieves content from a URL with context and timeout support.
func Fetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	resp, err := Do(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// FetchText retrieves a text document and decodes it to UTF-8 using the
// Content-Type header or the document's own charset declaration.
func FetchText(ctx context.Context, url string, opts FetchOptions) (string, error) {
	resp, err := Do(ctx, url, opts)
	if err != nil {
		return "", err
	}
	return DecodeText(resp.Body, resp.ContentType)
}

// DecodeText converts body to UTF-8.
func DecodeText(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		// Unknown charset label; treat as UTF-8.
		return string(body), nil
	}
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return b.String(), nil
}
