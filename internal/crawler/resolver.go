package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidSeed is returned when the seed URL cannot be parsed or has no
// usable host. This is a configuration error: the crawl aborts before any
// fetch.
var ErrInvalidSeed = errors.New("invalid seed URL")

// Resolver resolves relative references against a base URL and classifies
// URLs as same-domain or foreign relative to the crawl's seed.
//
// Design decision: Resolution and canonicalization live in one type because
// every resolved URL is immediately canonicalized for dedup; keeping them
// together makes it impossible to enqueue a non-canonical URL.
type Resolver struct {
	// seed is the parsed, canonicalized seed URL.
	seed *url.URL

	// allowSubdomains widens the same-domain check from exact host
	// equality to a dot-boundary suffix match.
	allowSubdomains bool
}

// NewResolver creates a Resolver for the given seed URL.
// A seed without a scheme is defaulted to https. Unparseable seeds or seeds
// without a host return ErrInvalidSeed.
func NewResolver(seedURL string, allowSubdomains bool) (*Resolver, error) {
	raw := strings.TrimSpace(seedURL)
	if raw == "" {
		return nil, ErrInvalidSeed
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSeed, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidSeed)
	}

	canonicalize(u)
	return &Resolver{seed: u, allowSubdomains: allowSubdomains}, nil
}

// Seed returns the canonical seed URL.
func (r *Resolver) Seed() string {
	return r.seed.String()
}

// Resolve resolves a reference against the given base URL and returns the
// canonical absolute form, or "" when the reference should be discarded
// (empty, fragment-only, or a non-http(s) scheme such as mailto: or
// javascript:). data: URIs also return ""; image callers must special-case
// them before resolving, since inline images are not URLs to fetch.
func (r *Resolver) Resolve(ref string, base *url.URL) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "#" || strings.HasPrefix(ref, "#") {
		return ""
	}

	lower := strings.ToLower(ref)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	canonicalize(resolved)
	return resolved.String()
}

// Canonicalize returns the normalized string form of a URL used for dedup
// comparisons: lowercase scheme and host, no fragment, no default port, and
// an empty path normalized to "/". Unparseable input is returned unchanged.
func (r *Resolver) Canonicalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	canonicalize(u)
	return u.String()
}

// SameDomain reports whether the URL belongs to the seed's domain.
// The default policy is exact host equality (case-insensitive, after
// default-port stripping); AllowSubdomains widens it to subdomains of the
// seed host.
func (r *Resolver) SameDomain(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	canonicalize(u)

	if strings.EqualFold(u.Host, r.seed.Host) {
		return true
	}
	if r.allowSubdomains {
		return strings.HasSuffix(u.Hostname(), "."+r.seed.Hostname())
	}
	return false
}

// canonicalize normalizes a URL in place.
func canonicalize(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Default ports carry no information
	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	// http://example.com and http://example.com/ are the same resource.
	// Deeper trailing slashes are left alone: /a and /a/ may differ.
	if u.Path == "" {
		u.Path = "/"
	}
}
