package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nao1215/sitegrab/internal/model"
	"github.com/nao1215/sitegrab/internal/report"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxNameLen bounds a single file name component inside the archive.
const maxNameLen = 60

// Archiver writes crawl results as ZIP archives.
type Archiver struct {
	// includeFailedPages also archives pages whose fetch failed
	// (as stub files noting the failure).
	includeFailedPages bool

	// logger records archiving activity.
	logger *slog.Logger
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithFailedPages includes failed pages as stub entries in the archive.
func WithFailedPages(include bool) Option {
	return func(a *Archiver) {
		a.includeFailedPages = include
	}
}

// WithLogger sets the archiver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archiver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Archiver.
func New(opts ...Option) *Archiver {
	a := &Archiver{}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Write streams the result as a ZIP archive to w.
func (a *Archiver) Write(w io.Writer, result *model.CrawlResult) error {
	zw := zip.NewWriter(w)

	if err := a.writePages(zw, result); err != nil {
		return err
	}
	if err := a.writeImages(zw, result); err != nil {
		return err
	}
	if err := a.writeSummary(zw, result); err != nil {
		return err
	}

	return zw.Close()
}

// WriteFile writes the archive to the given path, creating parent
// directories as needed.
func (a *Archiver) WriteFile(path string, result *model.CrawlResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	if err := a.Write(f, result); err != nil {
		_ = f.Close() //nolint:errcheck // Write error takes precedence
		return err
	}

	a.logger.Info("archive written", "path", path)
	return f.Close()
}

// writePages adds every crawled page under pages/.
func (a *Archiver) writePages(zw *zip.Writer, result *model.CrawlResult) error {
	n := 0
	for _, page := range result.Pages {
		if page.Status != model.StatusSuccess && !a.includeFailedPages {
			continue
		}
		n++

		name := fmt.Sprintf("pages/page_%03d_%s.html", n, slugify(pageSlug(page)))
		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}

		// Provenance comment so a reader can trace the file back
		if _, err := fmt.Fprintf(entry, "<!-- archived from %s at %s -->\n",
			page.URL, result.Started.Format("2006-01-02 15:04:05 MST")); err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}

		if page.Status == model.StatusSuccess {
			if _, err := entry.Write(page.HTML); err != nil {
				return fmt.Errorf("archive entry %s: %w", name, err)
			}
		} else {
			if _, err := fmt.Fprintf(entry, "<!-- fetch failed: %s -->\n", page.FailReason); err != nil {
				return fmt.Errorf("archive entry %s: %w", name, err)
			}
		}
	}
	return nil
}

// writeImages adds every collected image under images/.
func (a *Archiver) writeImages(zw *zip.Writer, result *model.CrawlResult) error {
	used := make(map[string]int)

	for _, img := range result.Images {
		if img.Status != model.StatusSuccess {
			continue
		}

		base := slugify(img.Label)
		if base == "" {
			base = "image"
		}
		ext := extensionFor(img)

		// Distinct images can share a label; suffix keeps names unique
		name := "images/" + base + ext
		used[name]++
		if c := used[name]; c > 1 {
			name = fmt.Sprintf("images/%s_%d%s", base, c, ext)
		}

		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}
		if _, err := entry.Write(img.Data); err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}
	}
	return nil
}

// writeSummary adds the human-readable summary file.
func (a *Archiver) writeSummary(zw *zip.Writer, result *model.CrawlResult) error {
	entry, err := zw.Create("summary.txt")
	if err != nil {
		return fmt.Errorf("archive entry summary.txt: %w", err)
	}

	_, err = report.NewSimpleWriter(entry, report.WithShowEmpty(true)).Write(result)
	if err != nil {
		return fmt.Errorf("archive entry summary.txt: %w", err)
	}
	return nil
}

// pageSlug picks the name-worthy part of a page: its title, falling back
// to the last URL path segment.
func pageSlug(page *model.PageResult) string {
	if page.Title != "" {
		return page.Title
	}

	path := page.URL
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
	}
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return "index"
	}
	return path
}

// asciiFold strips diacritics so "Tïtle" slugifies to "title"
// instead of losing the accented letters entirely.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify turns free text into a safe file name component.
func slugify(s string) string {
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")

	if len(out) > maxNameLen {
		out = out[:maxNameLen]
	}
	return out
}

// extensionFor maps an asset's MIME type to a file extension, falling
// back to the source URL's extension.
func extensionFor(img *model.ImageAsset) string {
	switch img.MIMEType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}

	// Fall back to whatever the URL claims
	if ext := filepath.Ext(urlPath(img.SourceURL)); ext != "" && len(ext) <= 5 {
		return strings.ToLower(ext)
	}
	return ".img"
}

// urlPath strips query and fragment from a raw URL.
func urlPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
