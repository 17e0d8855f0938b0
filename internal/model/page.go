package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Status reports whether fetching and processing an item succeeded.
type Status string

// Status values for PageResult and ImageAsset.
const (
	// StatusSuccess means the item was fetched (and, for images, decoded)
	// without error.
	StatusSuccess Status = "success"

	// StatusFailed means the item failed; FailReason holds the short
	// machine-readable reason (e.g. "HttpStatus:404", "Timeout").
	StatusFailed Status = "failed"
)

// MaxHTMLSize is the maximum size of page HTML to retain.
// Larger bodies are truncated to this size to bound memory use.
const MaxHTMLSize = 5 * 1024 * 1024 // 5MB

// PageResult represents one visited page.
// It is created when a fetch+parse completes and is immutable thereafter;
// the engine's result set is its only owner.
type PageResult struct {
	// URL is the canonical URL the page was visited under.
	URL string `json:"url"`

	// FinalURL is the post-redirect URL, when it differs from URL.
	// Relative references on the page were resolved against this.
	FinalURL string `json:"final_url,omitempty"`

	// Depth is the distance from the seed (seed = 0).
	Depth int `json:"depth"`

	// Title is the page title from the <title> tag, if any.
	Title string `json:"title,omitempty"`

	// StatusCode is the HTTP response status code, 0 if no response arrived.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type,omitempty"`

	// HTML is the raw page body, truncated to MaxHTMLSize.
	HTML []byte `json:"-"` // Excluded from JSON to keep reports small

	// Hash is the SHA-256 hash of the untruncated body.
	Hash string `json:"hash,omitempty"`

	// Status reports whether the page was fetched successfully.
	Status Status `json:"status"`

	// FailReason is the short reason when Status is StatusFailed.
	FailReason string `json:"fail_reason,omitempty"`

	// Links are the same-domain links discovered on this page, resolved
	// and canonicalized, deduplicated within the page.
	Links []string `json:"links,omitempty"`

	// ForeignLinks are resolved links pointing outside the seed's domain.
	// They are recorded for reporting but never crawled.
	ForeignLinks []string `json:"foreign_links,omitempty"`

	// ImageRefs are the image references discovered on this page, in
	// document order.
	ImageRefs []ImageRef `json:"image_refs,omitempty"`
}

// NewFailedPage creates a PageResult recording a per-page failure.
// A single failed page never aborts the crawl; the result carries the
// reason so callers can report it.
func NewFailedPage(url string, depth int, reason string) *PageResult {
	return &PageResult{
		URL:        url,
		Depth:      depth,
		Status:     StatusFailed,
		FailReason: reason,
	}
}

// ComputeHash calculates and sets the SHA-256 hash of the page body.
// Call it before TruncateHTML so the hash covers the full content.
func (p *PageResult) ComputeHash() {
	if len(p.HTML) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256(p.HTML)
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateHTML enforces the MaxHTMLSize bound on the stored body.
func (p *PageResult) TruncateHTML() {
	if len(p.HTML) > MaxHTMLSize {
		p.HTML = p.HTML[:MaxHTMLSize]
	}
}

// IsHTML returns true if the content type indicates an HTML document.
func (p *PageResult) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}
