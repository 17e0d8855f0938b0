package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to keep an unattended crawl polite and bounded
// while still covering a typical small-to-medium website.
const (
	// DefaultTimeout is the per-request timeout. 30 seconds is generous for
	// clearnet sites; slow responses beyond that are almost always stalls.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth of 3 reaches most content linked from a site's
	// navigation without wandering into deep archive or pagination chains.
	// Depth 0 means only fetch the seed page.
	DefaultMaxDepth = 3

	// DefaultMaxPages caps how many pages a single crawl may visit.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can raise it via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultWorkers is the width of the page-fetch pool. Four concurrent
	// requests against one origin is assertive but not abusive.
	DefaultWorkers = 4

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// processing multiple targets. Each seed already runs its own worker
	// pool, so this stays small.
	DefaultBatchSize = 2

	// DefaultMaxImagesPerPage bounds how many image references are taken
	// from a single page. Gallery pages can reference hundreds of images;
	// the cap keeps collection time predictable.
	DefaultMaxImagesPerPage = 20

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB covers HTML pages and most photographs while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegrab"
)

// Config holds all configuration options for sitegrab.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Timeout is the timeout for each HTTP request.
	// This applies to individual requests, not the overall crawl duration.
	Timeout time.Duration

	// MaxDepth is the maximum link depth for web crawling.
	// Depth 0 means only fetch the seed page.
	// Higher values find more content but take longer and use more resources.
	MaxDepth int

	// MaxPages is the maximum number of pages to crawl per seed.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// Workers is the number of concurrent page fetches per crawl.
	Workers int

	// BatchSize is the number of seeds crawled concurrently when processing
	// multiple targets.
	BatchSize int

	// MaxImagesPerPage caps how many image references are taken per page.
	// A value of 0 means use the default (DefaultMaxImagesPerPage).
	MaxImagesPerPage int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are rejected to prevent memory exhaustion.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64

	// FollowForeign enables following links that leave the seed's domain.
	// When false (default), foreign links are recorded but never visited.
	FollowForeign bool

	// AllowSubdomains treats subdomains of the seed host as the same domain.
	// Only meaningful when FollowForeign is false.
	AllowSubdomains bool

	// CollectImages enables fetching and validating the images referenced
	// by crawled pages.
	CollectImages bool

	// ExtractEXIF enables EXIF metadata extraction from collected images.
	// Only meaningful when CollectImages is true.
	ExtractEXIF bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitegrab in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config
	// file. This is populated by LoadConfigFile and used during crawling.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ArchiveFile is the output path for the ZIP archive of crawled pages
	// and images. When empty, no archive is written.
	ArchiveFile string

	// Seeds is the list of website URLs to crawl.
	// Must contain at least one URL. A missing scheme defaults to https.
	Seeds []string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, pool width).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		MaxDepth:         DefaultMaxDepth,
		MaxPages:         DefaultMaxPages,
		Workers:          DefaultWorkers,
		BatchSize:        DefaultBatchSize,
		MaxImagesPerPage: DefaultMaxImagesPerPage,
		MaxBodySize:      DefaultMaxBodySize,
		CollectImages:    true,
	}
}

// XDGDataDir returns the XDG data directory for sitegrab.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sitegrab
// On macOS: ~/Library/Application Support/sitegrab
// On Windows: %LOCALAPPDATA%\sitegrab
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitegrab.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/sitegrab
// On macOS: ~/Library/Application Support/sitegrab
// On Windows: %APPDATA%\sitegrab
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sitegrab.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/sitegrab
// On macOS: ~/Library/Caches/sitegrab
// On Windows: %LOCALAPPDATA%\sitegrab\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one seed to crawl
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// MaxPages must be positive; zero pages would mean no crawling
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// MaxDepth must be non-negative; depth 0 is the seed page alone
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	// Workers must be positive
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// BatchSize must be positive
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxImagesPerPage must be non-negative; 0 means default
	if c.MaxImagesPerPage < 0 {
		return ErrInvalidMaxImages
	}

	// MaxBodySize must be non-negative; 0 means default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
