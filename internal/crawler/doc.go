// Package crawler implements the crawl engine: domain-scoped, bounded
// breadth-first traversal of a website with concurrent page fetching.
//
// # Components
//
//   - Resolver: resolves relative references into absolute, canonicalized
//     URLs and classifies them as same-domain or foreign
//   - Document: a parsed HTML page exposing anchors and image elements
//   - Frontier: a deduplicating, depth- and capacity-bounded work queue
//   - Engine: orchestrates fetch, parse, resolve, and enqueue across a
//     bounded worker pool
//
// # Ordering
//
// Traversal is breadth-first: all entries at depth d are dequeued before any
// entry at depth d+1, and same-depth entries keep discovery order. The
// frontier stamps each accepted URL with a discovery sequence at Offer time,
// and the engine sorts results by that stamp, so output order is
// deterministic even though workers finish fetches in arbitrary order.
//
// # Known gaps
//
// Only <a href> and <img src> are considered for discovery. srcset variants
// and CSS background images are intentionally not extracted; scripts are
// never executed, so content rendered dynamically is invisible to the crawl.
package crawler
