package model

// CrawlRequest describes a single crawl invocation.
// It is immutable once the crawl starts; the engine copies the values it
// needs and never writes back.
type CrawlRequest struct {
	// SeedURL is the starting URL. A missing scheme is defaulted to https
	// during validation, mirroring what browsers do with bare host names.
	SeedURL string `json:"seed_url"`

	// MaxPages limits the total number of pages visited.
	// The frontier stops accepting URLs once this many have been enqueued,
	// so the number of PageResults never exceeds it.
	MaxPages int `json:"max_pages"`

	// MaxDepth limits how far from the seed the crawl may wander.
	// 0 means only the seed page, 1 adds pages linked from it, and so on.
	MaxDepth int `json:"max_depth"`

	// SameDomainOnly restricts traversal to the seed's host.
	// Foreign-domain links are still recorded on each PageResult, they are
	// just never enqueued.
	SameDomainOnly bool `json:"same_domain_only"`

	// AllowSubdomains widens the same-domain check from exact host equality
	// to a suffix match (img.example.com counts as example.com).
	AllowSubdomains bool `json:"allow_subdomains"`

	// MaxImagesPerPage caps how many image references are taken from a
	// single page. 0 means no cap.
	MaxImagesPerPage int `json:"max_images_per_page"`
}
