package model

import "time"

// PageFailure is one page that could not be fetched.
type PageFailure struct {
	// URL is the canonical URL that failed.
	URL string `json:"url"`

	// Reason is the short machine-readable failure reason,
	// e.g. "HttpStatus:404" or "Timeout".
	Reason string `json:"reason"`
}

// Summary condenses a CrawlResult into the numbers a reader wants first.
// It is embedded in reports and written to the archive's summary file.
type Summary struct {
	// SeedURL is the canonicalized seed the crawl started from.
	SeedURL string `json:"seed_url"`

	// Title is the seed page's title, when the seed was fetched.
	Title string `json:"title,omitempty"`

	// Crawled is when the crawl started.
	Crawled time.Time `json:"crawled"`

	// Duration is the crawl's wall-clock duration.
	Duration time.Duration `json:"duration"`

	// Termination explains why the crawl ended.
	Termination Termination `json:"termination"`

	// Error describes the failure when Termination is TerminationError.
	Error string `json:"error,omitempty"`

	// PagesVisited counts every visited page, including failures.
	PagesVisited int `json:"pages_visited"`

	// PagesSucceeded counts pages fetched successfully.
	PagesSucceeded int `json:"pages_succeeded"`

	// PagesFailed counts pages whose fetch failed.
	PagesFailed int `json:"pages_failed"`

	// LinksFound counts in-domain links across all pages (with duplicates
	// across pages).
	LinksFound int `json:"links_found"`

	// ForeignLinks counts links pointing outside the seed's domain.
	ForeignLinks int `json:"foreign_links"`

	// ImagesReferenced counts image references across all pages.
	ImagesReferenced int `json:"images_referenced"`

	// ImagesCollected counts unique images fetched and decoded.
	ImagesCollected int `json:"images_collected"`

	// ImagesFailed counts unique images whose fetch or decode failed.
	ImagesFailed int `json:"images_failed"`

	// ImageFormats counts collected images per MIME type.
	ImageFormats map[string]int `json:"image_formats,omitempty"`

	// FailedPages lists the pages whose fetch failed, with reasons.
	FailedPages []PageFailure `json:"failed_pages,omitempty"`
}

// NewSummary derives a Summary from a crawl result.
func NewSummary(result *CrawlResult) *Summary {
	s := &Summary{
		SeedURL:     result.SeedURL,
		Crawled:     result.Started,
		Duration:    result.Finished.Sub(result.Started),
		Termination: result.Termination,
		Error:       result.ErrorMessage,
	}

	for _, p := range result.Pages {
		s.PagesVisited++
		s.LinksFound += len(p.Links)
		s.ForeignLinks += len(p.ForeignLinks)
		s.ImagesReferenced += len(p.ImageRefs)

		switch p.Status {
		case StatusSuccess:
			s.PagesSucceeded++
		case StatusFailed:
			s.PagesFailed++
			s.FailedPages = append(s.FailedPages, PageFailure{
				URL:    p.URL,
				Reason: p.FailReason,
			})
		}
	}

	// The seed page is first in discovery order
	if len(result.Pages) > 0 {
		s.Title = result.Pages[0].Title
	}

	for _, img := range result.Images {
		switch img.Status {
		case StatusSuccess:
			s.ImagesCollected++
			if img.MIMEType != "" {
				if s.ImageFormats == nil {
					s.ImageFormats = make(map[string]int)
				}
				s.ImageFormats[img.MIMEType]++
			}
		case StatusFailed:
			s.ImagesFailed++
		}
	}

	return s
}

// HasFailures reports whether any page or image failed.
func (s *Summary) HasFailures() bool {
	return s.PagesFailed > 0 || s.ImagesFailed > 0
}
