package model

import "time"

// Termination explains why a crawl ended.
type Termination string

// Termination values.
const (
	// TerminationCompleted means the frontier drained or a configured bound
	// (max pages, max depth) was reached. Partial coverage still counts as
	// completed.
	TerminationCompleted Termination = "completed"

	// TerminationAborted means the caller cancelled the crawl mid-flight.
	// Already-completed pages and assets are preserved.
	TerminationAborted Termination = "aborted"

	// TerminationError means the crawl never started, typically because the
	// request failed validation.
	TerminationError Termination = "error"
)

// CrawlResult is everything one crawl invocation produced.
// The presentation and packaging layers consume it read-only and must
// tolerate partial results from aborted crawls.
type CrawlResult struct {
	// SeedURL is the canonicalized seed the crawl started from.
	SeedURL string `json:"seed_url"`

	// Pages are the visited pages in discovery (breadth-first) order,
	// including pages whose fetch failed.
	Pages []*PageResult `json:"pages"`

	// Images are the collected image assets, one per unique source URL.
	Images []*ImageAsset `json:"images,omitempty"`

	// Termination explains why the crawl ended.
	Termination Termination `json:"termination"`

	// Started and Finished bound the crawl's wall-clock duration.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// ErrorMessage describes the failure when Termination is
	// TerminationError.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewCrawlResult creates an empty result for the given seed.
// The crawl pipeline fills it in as steps execute.
func NewCrawlResult(seedURL string) *CrawlResult {
	return &CrawlResult{
		SeedURL: seedURL,
		Pages:   []*PageResult{},
	}
}

// PageCount returns the number of visited pages.
func (r *CrawlResult) PageCount() int {
	return len(r.Pages)
}

// SucceededPages returns the pages that were fetched successfully.
func (r *CrawlResult) SucceededPages() []*PageResult {
	pages := make([]*PageResult, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p.Status == StatusSuccess {
			pages = append(pages, p)
		}
	}
	return pages
}

// AllImageRefs returns every image reference across all pages, in page
// discovery order then document order. Duplicate source URLs are preserved.
func (r *CrawlResult) AllImageRefs() []ImageRef {
	refs := make([]ImageRef, 0)
	for _, p := range r.Pages {
		refs = append(refs, p.ImageRefs...)
	}
	return refs
}
