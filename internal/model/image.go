package model

import (
	"net/url"
	"path"
	"strings"
)

// ImageRef is one mention of an image on a page.
// The same image URL mentioned on several pages produces several refs;
// that is expected, not an error. Deduplication happens when refs are
// turned into assets.
type ImageRef struct {
	// SourceURL is the absolute URL of the image, or a data: URI for
	// inline images.
	SourceURL string `json:"source_url"`

	// OriginPageURL is the page the reference was found on.
	OriginPageURL string `json:"origin_page_url"`

	// AltText is the img element's alt attribute, if any.
	AltText string `json:"alt_text,omitempty"`

	// Context describes where on the page the image sits, derived from
	// semantic ancestor elements or a nearby heading
	// (e.g. "header > nav" or "Near heading: Our Team").
	Context string `json:"context,omitempty"`
}

// ImageAsset is one fetched and decoded image.
// At most one asset exists per unique source URL within a crawl, no matter
// how many ImageRefs pointed at it.
type ImageAsset struct {
	// SourceURL is the URL the image was fetched from (dedup key).
	SourceURL string `json:"source_url"`

	// Data is the raw image bytes.
	Data []byte `json:"-"` // Excluded from JSON to keep reports small

	// MIMEType is the decoded format when decoding succeeded, otherwise
	// the Content-Type the server claimed.
	MIMEType string `json:"mime_type,omitempty"`

	// Width and Height are the pixel dimensions from the decoder.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Label is a human-readable name derived from the origin page and the
	// reference context. It exists purely for presentation and file naming;
	// it is never used as a dedup key.
	Label string `json:"label,omitempty"`

	// EXIF holds selected EXIF tags extracted from the image, when present.
	// Keys are tag names (e.g. "Make", "DateTimeOriginal").
	EXIF map[string]string `json:"exif,omitempty"`

	// Status reports whether fetch and decode succeeded.
	Status Status `json:"status"`

	// FailReason is the short reason when Status is StatusFailed.
	FailReason string `json:"fail_reason,omitempty"`
}

// Label derives the asset label for this reference: the origin page's last
// path segment joined with the position context.
// "https://example.com/about/" + "main > .gallery" => "about/main > .gallery".
func (r *ImageRef) Label() string {
	segment := "index"
	if u, err := url.Parse(r.OriginPageURL); err == nil {
		if base := path.Base(strings.TrimSuffix(u.Path, "/")); base != "" && base != "." && base != "/" {
			segment = base
		}
	}
	if r.Context == "" {
		return segment
	}
	return segment + "/" + r.Context
}

// IsDataURI reports whether the reference is an inline data: URI.
// The scheme is matched case-insensitively.
func (r *ImageRef) IsDataURI() bool {
	return strings.HasPrefix(strings.ToLower(r.SourceURL), "data:")
}
