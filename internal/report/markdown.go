package report

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitegrab/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	return w.WriteSummary(model.NewSummary(result))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writePages(md, summary)
	w.writeImages(md, summary)
	w.writeFailedPages(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Sitegrab Report")
	md.PlainText("")

	title := summary.Title
	if title == "" {
		title = "-"
	}

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Website", "`" + summary.SeedURL + "`"},
			{"Title", title},
			{"Crawl Date", summary.Crawled.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.Round(10 * time.Millisecond).String()},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(summary *model.Summary) string {
	switch summary.Termination {
	case model.TerminationAborted:
		return "⚠️ Aborted (partial results)"
	case model.TerminationError:
		return "❌ Error - " + summary.Error
	default:
		return "✅ Complete"
	}
}

// writePages writes the page statistics section.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Pages")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Visited", strconv.Itoa(summary.PagesVisited)},
			{"Succeeded", strconv.Itoa(summary.PagesSucceeded)},
			{"Failed", strconv.Itoa(summary.PagesFailed)},
			{"Links found", strconv.Itoa(summary.LinksFound)},
			{"Foreign links", strconv.Itoa(summary.ForeignLinks)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.Termination == model.TerminationError:
		md.Cautionf("The crawl failed: %s", summary.Error)
	case summary.Termination == model.TerminationAborted:
		md.Warningf(
			"The crawl was aborted; %d page(s) were collected before cancellation.",
			summary.PagesVisited,
		)
	case summary.HasFailures():
		md.Importantf(
			"%d page(s) and %d image(s) could not be fetched. See the failure list below.",
			summary.PagesFailed, summary.ImagesFailed,
		)
	default:
		md.Tip("Every page and image was collected without errors.")
	}
	md.PlainText("")
}

// writeImages writes the image statistics section.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Images")
	md.PlainText("")

	if summary.ImagesReferenced == 0 {
		md.PlainText("No images referenced.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Referenced", strconv.Itoa(summary.ImagesReferenced)},
			{"Collected", strconv.Itoa(summary.ImagesCollected)},
			{"Failed", strconv.Itoa(summary.ImagesFailed)},
		},
	})
	md.PlainText("")

	if len(summary.ImageFormats) > 0 {
		w.writeFormatChart(md, summary)
	}
}

// writeFormatChart writes a mermaid pie chart of image format distribution.
func (w *MarkdownWriter) writeFormatChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Image Format Distribution"),
		piechart.WithShowData(true),
	)

	// Sorted for stable output
	formats := make([]string, 0, len(summary.ImageFormats))
	for mime := range summary.ImageFormats {
		formats = append(formats, mime)
	}
	sort.Strings(formats)
	for _, mime := range formats {
		chart.LabelAndIntValue(mime, uint64(summary.ImageFormats[mime])) //nolint:gosec // Counts are small and non-negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailedPages writes the failed page table.
func (w *MarkdownWriter) writeFailedPages(md *markdown.Markdown, summary *model.Summary) {
	if len(summary.FailedPages) == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")

	rows := make([][]string, len(summary.FailedPages))
	for i, f := range summary.FailedPages {
		rows[i] = []string{
			truncateString(f.URL, 60),
			f.Reason,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitegrab](https://github.com/nao1215/sitegrab)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
