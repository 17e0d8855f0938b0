package collector

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/sitegrab/internal/fetcher"
	"github.com/nao1215/sitegrab/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the default width of the image-fetch pool.
const DefaultConcurrency = 4

// ErrBadDataURI is recorded when an inline data: image cannot be decoded.
var ErrBadDataURI = errors.New("malformed data URI")

// Collector turns ImageRefs into deduplicated, validated ImageAssets.
type Collector struct {
	// fetcher performs image GETs.
	fetcher *fetcher.Fetcher

	// decoder validates bytes and extracts dimensions.
	decoder Decoder

	// concurrency is the fetch pool width, independent of the page pool.
	concurrency int

	// extractEXIF enables EXIF tag extraction for formats that carry it.
	extractEXIF bool

	// logger records collection activity.
	logger *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithDecoder replaces the default stdlib decoder.
func WithDecoder(d Decoder) Option {
	return func(c *Collector) {
		if d != nil {
			c.decoder = d
		}
	}
}

// WithConcurrency sets the image fetch pool width.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithEXIF enables EXIF metadata extraction from collected images.
func WithEXIF(enabled bool) Option {
	return func(c *Collector) {
		c.extractEXIF = enabled
	}
}

// WithLogger sets the collector logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Collector using the given Fetcher.
func New(f *fetcher.Fetcher, opts ...Option) *Collector {
	c := &Collector{
		fetcher:     f,
		decoder:     StdDecoder{},
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Collect fetches every distinct image referenced by the crawl.
//
// Refs are deduplicated by source URL: at most one asset exists per unique
// URL no matter how many pages referenced it, and assets keep first-seen
// order. Per-image failures are recorded in the asset's Status; Collect
// itself never fails. Cancelling ctx skips not-yet-started images while
// keeping finished assets.
func (c *Collector) Collect(ctx context.Context, refs []model.ImageRef) []*model.ImageAsset {
	unique := make([]model.ImageRef, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.SourceURL == "" || seen[ref.SourceURL] {
			continue
		}
		seen[ref.SourceURL] = true
		unique = append(unique, ref)
	}

	c.logger.Info("collecting images",
		"references", len(refs),
		"unique", len(unique),
		"concurrency", c.concurrency,
	)

	// Pre-allocated so each worker writes its own slot: first-seen order
	// is preserved without a results mutex.
	assets := make([]*model.ImageAsset, len(unique))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, ref := range unique {
		i, ref := i, ref
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			assets[i] = c.collectOne(ctx, ref)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers only return nil; failures live in asset statuses

	out := make([]*model.ImageAsset, 0, len(assets))
	for _, asset := range assets {
		if asset != nil {
			out = append(out, asset)
		}
	}
	return out
}

// collectOne fetches and validates a single image.
func (c *Collector) collectOne(ctx context.Context, ref model.ImageRef) *model.ImageAsset {
	asset := &model.ImageAsset{
		SourceURL: ref.SourceURL,
		Label:     ref.Label(),
		Status:    model.StatusSuccess,
	}

	var contentType string
	if ref.IsDataURI() {
		data, mime, err := decodeDataURI(ref.SourceURL)
		if err != nil {
			asset.Status = model.StatusFailed
			asset.FailReason = "BadDataUri"
			return asset
		}
		asset.Data = data
		contentType = mime
	} else {
		res, err := c.fetcher.Fetch(ctx, ref.SourceURL)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled mid-fetch: drop rather than record a misleading failure
				return nil
			}
			asset.Status = model.StatusFailed
			asset.FailReason = fetcher.Reason(err)
			c.logger.Debug("image fetch failed", "url", ref.SourceURL, "reason", asset.FailReason)
			return asset
		}
		asset.Data = res.Body
		contentType = res.ContentType
	}

	info, err := c.decoder.Decode(asset.Data)
	if err != nil {
		// The header is only a fallback identity for undecodable bytes
		asset.Status = model.StatusFailed
		asset.FailReason = "DecodeError"
		asset.MIMEType = contentType
		c.logger.Debug("image decode failed", "url", ref.SourceURL, "error", err)
		return asset
	}

	asset.MIMEType = info.MIMEType
	asset.Width = info.Width
	asset.Height = info.Height

	if c.extractEXIF {
		asset.EXIF = extractEXIF(asset.Data)
	}

	return asset
}

// decodeDataURI decodes an inline base64 data: image.
// Format: data:image/png;base64,iVBORw0...
// The scheme and metadata are matched case-insensitively per RFC 2397.
func decodeDataURI(uri string) ([]byte, string, error) {
	if len(uri) < len("data:") || !strings.EqualFold(uri[:len("data:")], "data:") {
		return nil, "", ErrBadDataURI
	}
	rest := uri[len("data:"):]

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrBadDataURI
	}

	meta = strings.ToLower(meta)
	mime, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, "base64") {
		return nil, "", ErrBadDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrBadDataURI
	}
	return data, mime, nil
}

// exifTagLimit bounds how many tags are kept per image.
const exifTagLimit = 32

// extractEXIF pulls flat EXIF tags from image bytes.
// Most images carry none; that is not an error.
func extractEXIF(data []byte) map[string]string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil || len(entries) == 0 {
		return nil
	}

	tags := make(map[string]string)
	for _, entry := range entries {
		if entry.TagName == "" || entry.Formatted == "" {
			continue
		}
		tags[entry.TagName] = entry.Formatted
		if len(tags) >= exifTagLimit {
			break
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
