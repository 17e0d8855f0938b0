// Package model defines the core data structures shared across sitegrab.
//
// The central types are:
//
//   - CrawlRequest: immutable description of one crawl invocation
//   - PageResult: one visited page (HTML, links, image references, status)
//   - ImageRef: one mention of an image on a page
//   - ImageAsset: one fetched and decoded image, deduplicated across mentions
//   - CrawlResult: everything one crawl produced, with a termination reason
//
// Design decision: Per-item failures (a page that returned 404, an image
// that would not decode) are recorded in the Status/FailReason fields of the
// corresponding result rather than propagated as errors. Partial success is
// always preferred over total failure; only configuration errors and
// cancellation change the overall termination reason.
package model
