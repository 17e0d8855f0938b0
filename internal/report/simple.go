package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/sitegrab/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	return w.WriteSummary(model.NewSummary(result))
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCrawlStats(&sb, summary)
	w.writeImageStats(&sb, summary)
	w.writeFailedPages(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SITEGRAB REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Website:     %s\n", summary.SeedURL))
	if summary.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:       %s\n", summary.Title))
	}
	sb.WriteString(fmt.Sprintf("Crawl Date:  %s\n", summary.Crawled.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", summary.Duration.Round(10*time.Millisecond)))

	switch {
	case summary.Termination == model.TerminationAborted:
		sb.WriteString("Status:      ABORTED (partial results)\n")
	case summary.Termination == model.TerminationError:
		sb.WriteString(fmt.Sprintf("Status:      ERROR - %s\n", summary.Error))
	default:
		sb.WriteString("Status:      Complete\n")
	}

	sb.WriteString("\n")
}

// writeCrawlStats writes the page statistics section.
func (w *SimpleWriter) writeCrawlStats(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  VISITED:   %d\n", summary.PagesVisited))
	sb.WriteString(fmt.Sprintf("  SUCCEEDED: %d\n", summary.PagesSucceeded))
	sb.WriteString(fmt.Sprintf("  FAILED:    %d\n", summary.PagesFailed))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  LINKS FOUND:   %d\n", summary.LinksFound))
	sb.WriteString(fmt.Sprintf("  FOREIGN LINKS: %d\n", summary.ForeignLinks))
	sb.WriteString("\n")
}

// writeImageStats writes the image statistics section.
func (w *SimpleWriter) writeImageStats(sb *strings.Builder, summary *model.Summary) {
	if summary.ImagesReferenced == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("IMAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  REFERENCED: %d\n", summary.ImagesReferenced))
	sb.WriteString(fmt.Sprintf("  COLLECTED:  %d\n", summary.ImagesCollected))
	sb.WriteString(fmt.Sprintf("  FAILED:     %d\n", summary.ImagesFailed))

	if len(summary.ImageFormats) > 0 {
		sb.WriteString("\n")
		// Sorted for stable output
		formats := make([]string, 0, len(summary.ImageFormats))
		for mime := range summary.ImageFormats {
			formats = append(formats, mime)
		}
		sort.Strings(formats)
		for _, mime := range formats {
			sb.WriteString(fmt.Sprintf("  [+] %s: %d\n", mime, summary.ImageFormats[mime]))
		}
	}
	sb.WriteString("\n")
}

// writeFailedPages writes the failed page list.
func (w *SimpleWriter) writeFailedPages(sb *strings.Builder, summary *model.Summary) {
	if len(summary.FailedPages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.FailedPages) == 0 {
		sb.WriteString("  No failures\n")
	} else {
		for _, f := range summary.FailedPages {
			sb.WriteString(fmt.Sprintf("  * %s\n", f.URL))
			sb.WriteString(fmt.Sprintf("    Reason: %s\n", f.Reason))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitegrab\n")
	sb.WriteString("https://github.com/nao1215/sitegrab\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
