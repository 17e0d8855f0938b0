// Package collector fetches and validates the images a crawl discovered.
//
// The collector receives every ImageRef the engine produced, deduplicates
// them by resolved source URL, and fetches each distinct image once over a
// bounded worker pool. Each image is validated by a pluggable Decoder that
// reports its format and pixel dimensions; images that fail to fetch or
// decode are recorded as failed assets, never aborting the collection.
//
// Inline data: URIs are decoded directly from the reference without any
// network round trip.
//
// Design decision: Labels attach to the FIRST reference observed for a
// source URL. A label exists purely for presentation and file naming; when
// ten pages embed the same logo, one asset with one label is the honest
// representation.
package collector
