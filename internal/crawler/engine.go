package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/sitegrab/internal/fetcher"
	"github.com/nao1215/sitegrab/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default width of the page-fetch worker pool.
// Crawling is I/O-bound, so a small pool hides serial latency without
// hammering the target with connections.
const DefaultWorkers = 4

// Configuration validation errors. These abort a crawl before any fetch.
var (
	// ErrInvalidMaxPages is returned when the page bound is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when the depth bound is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")
)

// Engine performs bounded breadth-first crawls.
//
// Design decision: The original design for this kind of tool is a serial
// fetch loop. The engine instead runs a bounded worker pool over a shared
// synchronized frontier, which overlaps network latency while preserving the
// breadth-first ordering contract: ordering is fixed by discovery sequence
// recorded at Offer time, never by fetch completion time.
type Engine struct {
	// fetcher performs page GETs.
	fetcher *fetcher.Fetcher

	// workers is the pool width.
	workers int

	// logger records crawl progress.
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the worker pool width.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine using the given Fetcher.
//
// Design decision: The Fetcher is injected rather than constructed here so
// that per-site headers, timeouts, and test transports are decided by the
// caller, and so page crawling and image collection can share one client.
func NewEngine(f *fetcher.Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher: f,
		workers: DefaultWorkers,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// orderedPage pairs a result with its frontier discovery sequence.
type orderedPage struct {
	order int
	page  *model.PageResult
}

// Run executes one crawl and returns everything it produced.
//
// Per-page failures are recorded in the corresponding PageResult and never
// abort the crawl. Run returns a non-nil error only for configuration
// problems (unparseable seed, invalid bounds), in which case no fetch was
// attempted. Cancellation of ctx aborts the crawl but still returns the
// pages completed so far, with Termination set to TerminationAborted.
//
// Each Run owns an isolated crawl state; an Engine may run any number of
// crawls, concurrently or in sequence, without state leaking between them.
func (e *Engine) Run(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error) {
	if req.MaxPages <= 0 {
		return nil, ErrInvalidMaxPages
	}
	if req.MaxDepth < 0 {
		return nil, ErrInvalidMaxDepth
	}

	resolver, err := NewResolver(req.SeedURL, req.AllowSubdomains)
	if err != nil {
		return nil, fmt.Errorf("seed %q: %w", req.SeedURL, err)
	}

	started := time.Now()
	frontier := NewFrontier(req.MaxDepth, req.MaxPages)
	frontier.Offer(resolver.Seed(), 0)

	// Cancellation closes the frontier so blocked workers exit promptly.
	stopWatch := context.AfterFunc(ctx, frontier.Close)
	defer stopWatch()

	var (
		mu    sync.Mutex
		pages []orderedPage
	)

	e.logger.Info("starting crawl",
		"seed", resolver.Seed(),
		"max_pages", req.MaxPages,
		"max_depth", req.MaxDepth,
		"workers", e.workers,
	)

	g := new(errgroup.Group)
	for i := 0; i < e.workers; i++ {
		g.Go(func() error {
			for {
				entry, ok := frontier.TakeNext()
				if !ok {
					return nil
				}

				page := e.visit(ctx, entry, resolver, frontier, &req)
				if page != nil {
					mu.Lock()
					pages = append(pages, orderedPage{order: entry.Order, page: page})
					mu.Unlock()
				}
				frontier.Done()
			}
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers only return nil; failures live in page results

	// Discovery order is the crawl's output contract
	sort.Slice(pages, func(i, j int) bool { return pages[i].order < pages[j].order })

	result := &model.CrawlResult{
		SeedURL:     resolver.Seed(),
		Pages:       make([]*model.PageResult, 0, len(pages)),
		Termination: model.TerminationCompleted,
		Started:     started,
		Finished:    time.Now(),
	}
	for _, op := range pages {
		result.Pages = append(result.Pages, op.page)
	}
	if ctx.Err() != nil {
		result.Termination = model.TerminationAborted
	}

	e.logger.Info("crawl finished",
		"seed", resolver.Seed(),
		"pages", len(result.Pages),
		"termination", result.Termination,
		"elapsed", result.Finished.Sub(result.Started),
	)

	return result, nil
}

// visit fetches and processes one frontier entry.
// It returns nil when the crawl was cancelled mid-fetch; the page is
// discarded rather than recorded with a misleading failure reason.
func (e *Engine) visit(ctx context.Context, entry Entry, resolver *Resolver, frontier *Frontier, req *model.CrawlRequest) *model.PageResult {
	res, err := e.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		reason := fetcher.Reason(err)
		e.logger.Debug("page fetch failed", "url", entry.URL, "reason", reason)
		return model.NewFailedPage(entry.URL, entry.Depth, reason)
	}

	page := &model.PageResult{
		URL:         entry.URL,
		Depth:       entry.Depth,
		StatusCode:  res.StatusCode,
		ContentType: res.ContentType,
		HTML:        res.Body,
		Status:      model.StatusSuccess,
	}
	if res.FinalURL != entry.URL {
		page.FinalURL = res.FinalURL
	}
	page.ComputeHash()
	page.TruncateHTML()

	if !page.IsHTML() {
		return page
	}

	doc, err := ParseHTML(res.Body, res.ContentType)
	if err != nil {
		// Treated as an empty parse: the page itself still succeeded
		e.logger.Debug("page parse failed", "url", entry.URL, "error", err)
		return page
	}
	page.Title = doc.Title()

	// Relative references resolve against the post-redirect URL
	base, err := url.Parse(res.FinalURL)
	if err != nil {
		base, _ = url.Parse(entry.URL)
	}

	e.extractLinks(doc, base, page, resolver, frontier, req, entry.Depth)
	e.extractImageRefs(doc, base, page, resolver, req)

	return page
}

// extractLinks resolves anchors, records them on the page, and offers
// crawlable ones to the frontier at depth+1.
func (e *Engine) extractLinks(doc *Document, base *url.URL, page *model.PageResult, resolver *Resolver, frontier *Frontier, req *model.CrawlRequest, depth int) {
	seenHere := make(map[string]bool)

	for _, href := range doc.Anchors() {
		link := resolver.Resolve(href, base)
		if link == "" || seenHere[link] {
			continue
		}
		seenHere[link] = true

		if resolver.SameDomain(link) {
			page.Links = append(page.Links, link)
			frontier.Offer(link, depth+1)
			continue
		}

		// Foreign links are recorded but enqueued only when the crawl is
		// explicitly not domain-scoped.
		page.ForeignLinks = append(page.ForeignLinks, link)
		if !req.SameDomainOnly {
			frontier.Offer(link, depth+1)
		}
	}
}

// extractImageRefs resolves image sources into refs on the page.
// Images are referenced wherever they live; foreign-hosted images are still
// collected. data: URIs pass through unresolved for inline decoding.
func (e *Engine) extractImageRefs(doc *Document, base *url.URL, page *model.PageResult, resolver *Resolver, req *model.CrawlRequest) {
	for _, img := range doc.Images() {
		if req.MaxImagesPerPage > 0 && len(page.ImageRefs) >= req.MaxImagesPerPage {
			return
		}

		ref := model.ImageRef{
			OriginPageURL: page.URL,
			AltText:       img.Alt,
			Context:       img.Context,
		}

		// Scheme comparison is case-insensitive, same as Resolve.
		if strings.HasPrefix(strings.ToLower(img.Src), "data:") {
			ref.SourceURL = img.Src
		} else {
			ref.SourceURL = resolver.Resolve(img.Src, base)
			if ref.SourceURL == "" {
				continue
			}
		}

		page.ImageRefs = append(page.ImageRefs, ref)
	}
}
