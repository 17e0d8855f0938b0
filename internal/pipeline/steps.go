package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitegrab/internal/collector"
	"github.com/nao1215/sitegrab/internal/config"
	"github.com/nao1215/sitegrab/internal/crawler"
	"github.com/nao1215/sitegrab/internal/fetcher"
	"github.com/nao1215/sitegrab/internal/model"
)

// CrawlStep performs web crawling from the seed URL.
// This step discovers pages, extracts links and image references, and fills
// the result's page list in discovery order.
//
// Design decision: Crawling is its own step because:
// 1. It has its own configuration (depth, page cap, pool width)
// 2. It produces the page data every later step consumes
// 3. It can run alone when image collection is disabled
type CrawlStep struct {
	// fetcher performs page GETs, pre-configured with identity headers
	// and any per-site cookies.
	fetcher *fetcher.Fetcher

	// maxDepth limits crawl recursion.
	maxDepth int

	// maxPages limits total pages to crawl.
	maxPages int

	// workers is the width of the page-fetch pool.
	workers int

	// followForeign enables visiting links outside the seed's domain.
	followForeign bool

	// allowSubdomains treats subdomains of the seed host as in-domain.
	allowSubdomains bool

	// maxImagesPerPage caps image references taken from one page.
	maxImagesPerPage int

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlWorkers sets the page-fetch pool width.
func WithCrawlWorkers(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.workers = n
	}
}

// WithCrawlFollowForeign enables visiting links outside the seed's domain.
func WithCrawlFollowForeign(follow bool) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followForeign = follow
	}
}

// WithCrawlAllowSubdomains treats subdomains of the seed host as in-domain.
func WithCrawlAllowSubdomains(allow bool) CrawlStepOption {
	return func(s *CrawlStep) {
		s.allowSubdomains = allow
	}
}

// WithCrawlMaxImagesPerPage caps how many image references are taken from
// a single page.
func WithCrawlMaxImagesPerPage(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxImagesPerPage = n
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step using the given fetcher.
func NewCrawlStep(f *fetcher.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:          f,
		maxDepth:         config.DefaultMaxDepth,
		maxPages:         config.DefaultMaxPages,
		workers:          config.DefaultWorkers,
		maxImagesPerPage: config.DefaultMaxImagesPerPage,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
// The seed is taken from the result; the crawl's pages, termination, and
// timing replace whatever the result held before.
func (s *CrawlStep) Do(ctx context.Context, result *model.CrawlResult) error {
	engine := crawler.NewEngine(s.fetcher,
		crawler.WithWorkers(s.workers),
		crawler.WithLogger(s.logger),
	)

	req := model.CrawlRequest{
		SeedURL:          result.SeedURL,
		MaxPages:         s.maxPages,
		MaxDepth:         s.maxDepth,
		SameDomainOnly:   !s.followForeign,
		AllowSubdomains:  s.allowSubdomains,
		MaxImagesPerPage: s.maxImagesPerPage,
	}

	crawled, err := engine.Run(ctx, req)
	if err != nil {
		return err
	}

	result.SeedURL = crawled.SeedURL
	result.Pages = crawled.Pages
	result.Termination = crawled.Termination
	result.Started = crawled.Started
	result.Finished = crawled.Finished

	s.logger.Info("crawl completed",
		"seed", result.SeedURL,
		"pages", len(result.Pages),
		"termination", result.Termination,
	)

	return nil
}

// ImageCollectStep fetches and validates the images referenced by crawled
// pages. References are deduplicated by source URL before fetching.
//
// Design decision: Image collection is separate from crawling because:
// 1. It runs after all pages are known, so deduplication sees every ref
// 2. It has its own concurrency and can be disabled entirely
// 3. Image failures never affect the crawled page data
type ImageCollectStep struct {
	// collector fetches, decodes, and deduplicates images.
	collector *collector.Collector

	// logger for structured logging.
	logger *slog.Logger
}

// ImageCollectStepOption configures an ImageCollectStep.
type ImageCollectStepOption func(*ImageCollectStep)

// WithImageLogger sets a custom logger for the image collection step.
func WithImageLogger(logger *slog.Logger) ImageCollectStepOption {
	return func(s *ImageCollectStep) {
		s.logger = logger
	}
}

// NewImageCollectStep creates a new image collection step.
func NewImageCollectStep(c *collector.Collector, opts ...ImageCollectStepOption) *ImageCollectStep {
	s := &ImageCollectStep{
		collector: c,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ImageCollectStep) Name() string {
	return "collect_images"
}

// Do executes the image collection step.
func (s *ImageCollectStep) Do(ctx context.Context, result *model.CrawlResult) error {
	refs := result.AllImageRefs()
	if len(refs) == 0 {
		s.logger.Debug("skipping image collection, no images referenced")
		return nil
	}

	result.Images = s.collector.Collect(ctx, refs)

	s.logger.Info("image collection completed",
		"references", len(refs),
		"assets", len(result.Images),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// MaxDepth is the maximum depth for web crawling.
	MaxDepth int

	// MaxPages is the maximum number of pages to crawl.
	MaxPages int

	// Workers is the page-fetch pool width.
	Workers int

	// FollowForeign enables visiting links outside the seed's domain.
	FollowForeign bool

	// AllowSubdomains treats subdomains of the seed host as in-domain.
	AllowSubdomains bool

	// MaxImagesPerPage caps image references taken from one page.
	MaxImagesPerPage int

	// CollectImages enables the image collection step.
	CollectImages bool

	// ExtractEXIF enables EXIF extraction during image collection.
	ExtractEXIF bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxDepth sets the crawl depth for the pipeline.
func WithPipelineMaxDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxDepth = depth
	}
}

// WithPipelineMaxPages sets the maximum pages to crawl.
func WithPipelineMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPages = maxPages
	}
}

// WithPipelineWorkers sets the page-fetch pool width.
func WithPipelineWorkers(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Workers = n
	}
}

// WithPipelineFollowForeign enables visiting links outside the seed's domain.
func WithPipelineFollowForeign(follow bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FollowForeign = follow
	}
}

// WithPipelineAllowSubdomains treats subdomains of the seed host as in-domain.
func WithPipelineAllowSubdomains(allow bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.AllowSubdomains = allow
	}
}

// WithPipelineMaxImagesPerPage caps image references taken from one page.
func WithPipelineMaxImagesPerPage(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxImagesPerPage = n
	}
}

// WithPipelineCollectImages enables or disables the image collection step.
func WithPipelineCollectImages(collect bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CollectImages = collect
	}
}

// WithPipelineExtractEXIF enables EXIF extraction during image collection.
func WithPipelineExtractEXIF(extract bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ExtractEXIF = extract
	}
}

// DefaultPipeline creates a pipeline with the standard steps configured.
// This is the usual pipeline for crawling a website and gathering its images.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full crawl-then-collect flow
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxDepth, etc).
func DefaultPipeline(f *fetcher.Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MaxDepth:         config.DefaultMaxDepth,
		MaxPages:         config.DefaultMaxPages,
		Workers:          config.DefaultWorkers,
		MaxImagesPerPage: config.DefaultMaxImagesPerPage,
		CollectImages:    true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddStep(NewCrawlStep(f,
		WithCrawlMaxDepth(cfg.MaxDepth),
		WithCrawlMaxPages(cfg.MaxPages),
		WithCrawlWorkers(cfg.Workers),
		WithCrawlFollowForeign(cfg.FollowForeign),
		WithCrawlAllowSubdomains(cfg.AllowSubdomains),
		WithCrawlMaxImagesPerPage(cfg.MaxImagesPerPage),
	))

	if cfg.CollectImages {
		p.AddStep(NewImageCollectStep(
			collector.New(f, collector.WithEXIF(cfg.ExtractEXIF)),
		))
	}

	return p
}
