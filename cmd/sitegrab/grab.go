package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/sitegrab/internal/archive"
	"github.com/nao1215/sitegrab/internal/config"
	"github.com/nao1215/sitegrab/internal/fetcher"
	"github.com/nao1215/sitegrab/internal/log"
	"github.com/nao1215/sitegrab/internal/model"
	"github.com/nao1215/sitegrab/internal/pipeline"
	"github.com/nao1215/sitegrab/internal/report"
	"github.com/spf13/cobra"
)

// NewGrabCmd creates the grab command.
func NewGrabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grab [url]",
		Short: "Crawl a website and collect its images",
		Long: `Grab crawls a website starting from the given seed URL.

It fetches pages over HTTP, follows same-domain links in breadth-first
order up to the configured depth and page limits, and collects the images
each page references. Failed pages are recorded with a reason and do not
stop the crawl.

Examples:
  # Crawl a single site
  sitegrab grab example.com

  # Crawl multiple sites concurrently
  sitegrab grab site1.com site2.com site3.com

  # Limit the crawl and skip image collection
  sitegrab grab --depth 1 --max-pages 10 --no-images example.com

  # Output JSON report and write a ZIP archive of pages and images
  sitegrab grab --json --archive site.zip example.com

  # Use a custom configuration file
  sitegrab grab -c myconfig.yaml example.com

Configuration file (.sitegrab) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    shop.example.org:
      depth: 5
      maxPages: 200`,
		Args: cobra.ArbitraryArgs,
		RunE: runGrabCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth to follow (0 fetches only the seed page)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per seed")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent page fetches per crawl")
	cmd.Flags().Bool("follow-foreign", false,
		"Follow links that leave the seed's domain")
	cmd.Flags().Bool("subdomains", false,
		"Treat subdomains of the seed host as the same domain")

	// Image collection flags
	cmd.Flags().Bool("no-images", false,
		"Skip fetching the images referenced by crawled pages")
	cmd.Flags().IntP("max-images", "i", config.DefaultMaxImagesPerPage,
		"Maximum number of image references taken per page")
	cmd.Flags().BoolP("exif", "x", false,
		"Extract EXIF metadata from collected images")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple seeds are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitegrab in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("archive", "a", "",
		"Write crawled pages and images to a ZIP archive at this path")

	return cmd
}

// runGrabCmd executes the grab command.
func runGrabCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runGrab(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.FollowForeign, err = cmd.Flags().GetBool("follow-foreign")
	if err != nil {
		return nil, err
	}

	cfg.AllowSubdomains, err = cmd.Flags().GetBool("subdomains")
	if err != nil {
		return nil, err
	}

	noImages, err := cmd.Flags().GetBool("no-images")
	if err != nil {
		return nil, err
	}
	cfg.CollectImages = !noImages

	cfg.MaxImagesPerPage, err = cmd.Flags().GetInt("max-images")
	if err != nil {
		return nil, err
	}

	cfg.ExtractEXIF, err = cmd.Flags().GetBool("exif")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ArchiveFile, err = cmd.Flags().GetString("archive")
	if err != nil {
		return nil, err
	}

	// Get positional arguments (seed URLs)
	cfg.Seeds = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The logger masks cookies, tokens, and other credentials that may appear
// in per-site request headers.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runGrab executes the crawl.
func runGrab(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Seeds) == 0 {
		return errors.New("no seeds provided (specify one or more website URLs as arguments)")
	}

	// Normalize all seed URLs; a missing scheme defaults to https
	for i, seed := range cfg.Seeds {
		normalized, err := normalizeSeed(seed)
		if err != nil {
			return fmt.Errorf("invalid seed URL %q: %w", seed, err)
		}
		cfg.Seeds[i] = normalized
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxDepth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"collectImages", cfg.CollectImages,
	)

	// Use batch processor for parallel crawling if multiple seeds
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchGrab(ctx, cfg, logger)
	}

	// Single seed or sequential crawling
	return runSequentialGrab(ctx, cfg, logger)
}

// runSequentialGrab crawls seeds one at a time.
func runSequentialGrab(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	multi := len(cfg.Seeds) > 1

	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific configuration
		siteConfig := getSiteConfig(cfg, seed)

		// Create pipeline with site-specific options
		p := createPipelineForSeed(cfg, siteConfig, logger)

		result := model.NewCrawlResult(seed)

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, result); err != nil {
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, result); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}

		// Write ZIP archive if requested
		if err := writeArchive(cfg, result, multi, logger); err != nil {
			logger.Error("archive failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchGrab crawls multiple seeds concurrently using BatchProcessor.
func runBatchGrab(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (cookies, headers, depth) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Note: For batch processing, we use default site config
			// Site-specific configs would require per-seed pipeline creation
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createPipelineForSeed(cfg, siteConfig, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Seeds, func(result *model.CrawlResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Seeds), result.SeedURL)

		// Generate and output report
		if err := outputReport(cfg, result); err != nil {
			logger.Error("report failed", "seed", result.SeedURL, "error", err)
		}

		// Write ZIP archive if requested
		if err := writeArchive(cfg, result, true, logger); err != nil {
			logger.Error("archive failed", "seed", result.SeedURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// normalizeSeed validates a seed URL and defaults a missing scheme to https.
func normalizeSeed(seed string) (string, error) {
	raw := strings.TrimSpace(seed)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", errors.New("missing host")
	}

	return u.String(), nil
}

// seedHost extracts the hostname from a normalized seed URL.
func seedHost(seed string) string {
	u, err := url.Parse(seed)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// getSiteConfig returns the site-specific configuration for a seed.
// The config file keys sites by hostname, so the seed's host is used
// for the lookup. Falls back to defaults if no site-specific config exists.
func getSiteConfig(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	return cfg.SiteConfigs.GetSiteConfig(seedHost(seed))
}

// createPipelineForSeed creates a pipeline with the given configuration.
// Each pipeline gets its own fetcher so per-site cookies and headers do not
// leak between sites.
func createPipelineForSeed(cfg *config.Config, siteConfig config.SiteConfig, logger *slog.Logger) *pipeline.Pipeline {
	fetcherOpts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	}
	if headers := siteConfig.RequestHeaders(); len(headers) > 0 {
		fetcherOpts = append(fetcherOpts, fetcher.WithHeaders(headers))
	}
	f := fetcher.New(fetcherOpts...)

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	// Site-specific limits override global ones
	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}
	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineMaxDepth(maxDepth),
		pipeline.WithPipelineMaxPages(maxPages),
		pipeline.WithPipelineWorkers(cfg.Workers),
		pipeline.WithPipelineFollowForeign(cfg.FollowForeign),
		pipeline.WithPipelineAllowSubdomains(cfg.AllowSubdomains),
		pipeline.WithPipelineMaxImagesPerPage(cfg.MaxImagesPerPage),
		pipeline.WithPipelineCollectImages(cfg.CollectImages),
		pipeline.WithPipelineExtractEXIF(cfg.ExtractEXIF),
	}

	return pipeline.DefaultPipeline(f, pipelineOpts, configOpts...)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports may contain session cookies echoed in page URLs.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full crawl data plus derived summary)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(result)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(result)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(result)
	return err
}

// writeArchive writes the crawl result to a ZIP archive if requested.
// When multiple seeds share one archive flag, each seed gets its own file
// with the hostname inserted before the extension.
func writeArchive(cfg *config.Config, result *model.CrawlResult, multi bool, logger *slog.Logger) error {
	if cfg.ArchiveFile == "" {
		return nil
	}

	path := cfg.ArchiveFile
	if multi {
		path = archivePathFor(path, result.SeedURL)
	}

	a := archive.New(archive.WithLogger(logger))
	if err := a.WriteFile(path, result); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	fmt.Printf("Archive written: %s\n", path)
	return nil
}

// archivePathFor derives a per-seed archive path from the base path by
// inserting the seed's hostname before the file extension.
// "out/site.zip" + "https://example.com" -> "out/site_example_com.zip"
func archivePathFor(base, seed string) string {
	host := seedHost(seed)
	if host == "" {
		return base
	}
	host = strings.NewReplacer(".", "_", ":", "_").Replace(host)

	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + host + ext
}
