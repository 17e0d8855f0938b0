package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Default fetcher settings.
const (
	// DefaultTimeout is the per-request deadline. 30 seconds matches the
	// kind of ordinary websites this tool targets; slower pages are treated
	// as failed rather than holding a worker hostage.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits response bodies to 10MB. Enough for heavy
	// HTML and most images while preventing memory exhaustion from
	// unexpectedly large responses. The limit is enforced incrementally
	// during the read, not after buffering.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent mimics a mainstream browser. Many sites serve
	// degraded or empty content to clients without a recognizable
	// User-Agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultAccept is the Accept header sent with every request.
	DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

	// maxRedirects is the fixed redirect-following limit.
	maxRedirects = 5
)

// Result is a successful fetch.
type Result struct {
	// Body is the response body, at most the configured byte cap.
	Body []byte

	// ContentType is the Content-Type header value.
	ContentType string

	// FinalURL is the URL after following redirects. Relative references
	// in the body must be resolved against this, not the request URL.
	FinalURL string

	// StatusCode is the HTTP status code (always < 400 here).
	StatusCode int
}

// Fetcher performs single HTTP GETs with a configured identity header set.
//
// Design decision: The Fetcher is an explicitly constructed, immutable
// configuration object passed into the engine by reference. There is no
// process-wide session or mutable default-header state; two crawls with
// different settings simply hold two Fetchers.
type Fetcher struct {
	// client is the HTTP client; its CheckRedirect enforces maxRedirects.
	client *http.Client

	// userAgent and accept are the identity headers sent on every request.
	userAgent string
	accept    string

	// headers are extra headers (per-site cookies etc.) merged into each
	// request after the identity headers.
	headers map[string]string

	// timeout is the per-request deadline.
	timeout time.Duration

	// maxBodySize caps how many body bytes are read.
	maxBodySize int64

	// logger records fetch activity at debug level.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize sets the response body byte cap.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders sets extra headers sent with every request.
// Useful for per-site cookies or authorization from the config file.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// The redirect limit is applied to the provided client as well, so tests
// and callers with custom transports keep the same redirect behavior.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets the logger used for debug-level fetch activity.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{},
		userAgent:   DefaultUserAgent,
		accept:      DefaultAccept,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	f.client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errRedirectLimit
		}
		return nil
	}

	return f
}

// Fetch performs a single GET of the given URL.
// The returned error, when non-nil, is always a *Error. Fetch honors both
// the shared cancellation context and its own per-request timeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{Kind: KindInvalidURL, URL: rawURL}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", f.accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	if resp.StatusCode >= 400 {
		return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	// Read one byte past the cap so an oversized body is detected without
	// ever buffering more than the cap.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, f.classify(rawURL, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &Error{Kind: KindContentTooLarge, URL: rawURL}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("fetched",
		"url", rawURL,
		"final_url", finalURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
	}, nil
}

// classify maps a transport-level error to a typed fetch error.
func (f *Fetcher) classify(rawURL string, err error) *Error {
	if errors.Is(err, errRedirectLimit) {
		return &Error{Kind: KindTooManyRedirects, URL: rawURL, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}

	return &Error{Kind: KindConnectionFailed, URL: rawURL, Err: err}
}
