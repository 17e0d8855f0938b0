package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitegrab/internal/model"
)

// createTestResult creates a crawl result with sample data for testing.
func createTestResult() *model.CrawlResult {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &model.CrawlResult{
		SeedURL: "https://example.com/",
		Pages: []*model.PageResult{
			{
				URL:    "https://example.com/",
				Depth:  0,
				Title:  "Example Home",
				Status: model.StatusSuccess,
				Links:  []string{"https://example.com/about", "https://example.com/blog"},
				ImageRefs: []model.ImageRef{
					{SourceURL: "https://example.com/logo.png", OriginPageURL: "https://example.com/"},
				},
			},
			{
				URL:          "https://example.com/about",
				Depth:        1,
				Title:        "About",
				Status:       model.StatusSuccess,
				ForeignLinks: []string{"https://partner.example.org/"},
			},
			{
				URL:        "https://example.com/blog",
				Depth:      1,
				Status:     model.StatusFailed,
				FailReason: "HttpStatus:404",
			},
		},
		Images: []*model.ImageAsset{
			{
				SourceURL: "https://example.com/logo.png",
				MIMEType:  "image/png",
				Width:     320,
				Height:    200,
				Status:    model.StatusSuccess,
			},
		},
		Termination: model.TerminationCompleted,
		Started:     started,
		Finished:    started.Add(3 * time.Second),
	}
}

// TestNewSummary tests deriving a summary from a crawl result.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	summary := model.NewSummary(createTestResult())

	if summary.PagesVisited != 3 {
		t.Errorf("expected 3 pages visited, got %d", summary.PagesVisited)
	}
	if summary.PagesSucceeded != 2 {
		t.Errorf("expected 2 pages succeeded, got %d", summary.PagesSucceeded)
	}
	if summary.PagesFailed != 1 {
		t.Errorf("expected 1 page failed, got %d", summary.PagesFailed)
	}
	if summary.Title != "Example Home" {
		t.Errorf("expected seed title, got %q", summary.Title)
	}
	if summary.LinksFound != 2 {
		t.Errorf("expected 2 links, got %d", summary.LinksFound)
	}
	if summary.ForeignLinks != 1 {
		t.Errorf("expected 1 foreign link, got %d", summary.ForeignLinks)
	}
	if summary.ImagesCollected != 1 {
		t.Errorf("expected 1 image collected, got %d", summary.ImagesCollected)
	}
	if summary.ImageFormats["image/png"] != 1 {
		t.Errorf("expected png format count 1, got %v", summary.ImageFormats)
	}
	if len(summary.FailedPages) != 1 || summary.FailedPages[0].Reason != "HttpStatus:404" {
		t.Errorf("expected one 404 failure, got %v", summary.FailedPages)
	}
	if summary.Duration != 3*time.Second {
		t.Errorf("expected 3s duration, got %v", summary.Duration)
	}
	if !summary.HasFailures() {
		t.Error("expected HasFailures to be true")
	}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SITEGRAB REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "https://example.com/") {
			t.Error("expected output to contain seed URL")
		}
		if !strings.Contains(output, "Example Home") {
			t.Error("expected output to contain seed title")
		}
	})

	t.Run("writes page statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PAGES") {
			t.Error("expected output to contain pages section")
		}
		if !strings.Contains(output, "VISITED:   3") {
			t.Error("expected output to contain visited count")
		}
		if !strings.Contains(output, "SUCCEEDED: 2") {
			t.Error("expected output to contain success count")
		}
	})

	t.Run("writes image statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "IMAGES") {
			t.Error("expected output to contain images section")
		}
		if !strings.Contains(output, "image/png: 1") {
			t.Error("expected output to contain format breakdown")
		}
	})

	t.Run("writes failed pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "FAILED PAGES") {
			t.Error("expected output to contain failed pages section")
		}
		if !strings.Contains(output, "HttpStatus:404") {
			t.Error("expected output to contain failure reason")
		}
	})

	t.Run("reports aborted status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		result := createTestResult()
		result.Termination = model.TerminationAborted

		_, err := w.Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "ABORTED") {
			t.Error("expected output to contain aborted status")
		}
	})

	t.Run("hides empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		result := createTestResult()
		result.Pages = result.Pages[:2] // drop the failed page
		result.Pages[0].ImageRefs = nil
		result.Images = nil

		_, err := w.Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "FAILED PAGES") {
			t.Error("expected failed pages section to be hidden")
		}
		if strings.Contains(output, "IMAGES") {
			t.Error("expected images section to be hidden")
		}
	})

	t.Run("shows empty sections with WithShowEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		result := createTestResult()
		result.Pages = result.Pages[:2]

		_, err := w.Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No failures") {
			t.Error("expected empty failed pages section to be shown")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.CrawlResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.SeedURL != "https://example.com/" {
			t.Errorf("expected seed URL, got %q", decoded.SeedURL)
		}
		if len(decoded.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(decoded.Pages))
		}
	})

	t.Run("writes pretty-printed JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("writes summary JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.WriteSummary(model.NewSummary(createTestResult()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.PagesVisited != 3 {
			t.Errorf("expected 3 pages visited, got %d", decoded.PagesVisited)
		}
	})
}

// TestFullJSONWriter tests the metadata-wrapped JSON writer.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "1.2.3", WithPrettyPrint())

	_, err := w.Write(createTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wrapped JSONReport
	if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if wrapped.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", wrapped.Version)
	}
	if wrapped.Result == nil || len(wrapped.Result.Pages) != 3 {
		t.Error("expected wrapped result with 3 pages")
	}
	if wrapped.Summary == nil || wrapped.Summary.PagesVisited != 3 {
		t.Error("expected derived summary in wrapper")
	}
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes title and info table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Sitegrab Report") {
			t.Error("expected markdown title")
		}
		if !strings.Contains(output, "`https://example.com/`") {
			t.Error("expected seed URL in info table")
		}
	})

	t.Run("writes page and image sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Pages") {
			t.Error("expected pages section")
		}
		if !strings.Contains(output, "## Images") {
			t.Error("expected images section")
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid format chart")
		}
	})

	t.Run("writes failed pages table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Failed Pages") {
			t.Error("expected failed pages section")
		}
		if !strings.Contains(output, "HttpStatus:404") {
			t.Error("expected failure reason in table")
		}
	})

	t.Run("omits failed pages when none", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		result := createTestResult()
		result.Pages = result.Pages[:2]

		_, err := w.Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "## Failed Pages") {
			t.Error("expected failed pages section to be omitted")
		}
	})
}

// TestMultiWriter tests writing to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		_, err := mw.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf1.Len() == 0 {
			t.Error("expected output in first writer")
		}
		if buf2.Len() == 0 {
			t.Error("expected output in second writer")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(
			NewSimpleWriter(failingWriter{}),
			NewSimpleWriter(&buf),
		)

		_, err := mw.Write(createTestResult())
		if err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected second writer to be skipped")
		}
	})
}

// failingWriter always fails writes.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

// TestTruncateString tests the string truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this string is definitely too long", 10, "this st..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
