// Package security validates URLs before palettesniffer fetches them.
package security

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// ErrPrivateHost is returned when a URL points at a local or private host
// and private hosts are blocked.
var ErrPrivateHost = errors.New("URL cannot point to local or private hosts")

// ValidateTargetURL checks that rawURL is an absolute http(s) URL with a host.
// With blockPrivate set, loopback, private and link-local hosts are rejected.
func ValidateTargetURL(rawURL string, blockPrivate bool) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "https" && scheme != "http" {
		return fmt.Errorf("only http and https URLs are allowed (got %q)", parsed.Scheme)
	}

	if parsed.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	host := strings.ToLower(parsed.Hostname())
	if blockPrivate && isLocalOrPrivateHost(host) {
		return fmt.Errorf("%w: %s", ErrPrivateHost, host)
	}

	return nil
}

// isLocalOrPrivateHost checks if a hostname is localhost or a literal
// loopback, private, link-local or unspecified address. Names are not resolved.
func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}
