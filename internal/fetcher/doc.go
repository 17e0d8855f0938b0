// Package fetcher performs single HTTP GET requests for pages and images.
//
// The Fetcher sends identity headers mimicking a common browser because many
// sites reject unidentified clients. It follows redirects up to a small fixed
// limit and reports the post-redirect URL so callers resolve relative
// references against the right base.
//
// Design decision: The Fetcher performs no retries. Retry policy belongs to
// the caller; the crawl engine deliberately treats a failed page as a final,
// recorded result rather than something to retry.
//
// All failures are returned as *Error with a Kind that callers can switch on
// and a stable Reason string (e.g. "HttpStatus:404") that is recorded in
// page and image statuses.
package fetcher
