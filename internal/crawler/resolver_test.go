package crawler

import (
	"errors"
	"net/url"
	"testing"
)

// TestNewResolver tests seed validation and defaulting.
func TestNewResolver(t *testing.T) {
	t.Parallel()

	t.Run("defaults missing scheme to https", func(t *testing.T) {
		t.Parallel()

		r, err := NewResolver("example.com", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Seed() != "https://example.com/" {
			t.Errorf("expected https://example.com/, got %q", r.Seed())
		}
	})

	t.Run("canonicalizes seed", func(t *testing.T) {
		t.Parallel()

		r, err := NewResolver("HTTP://Example.COM:80/Path#frag", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Seed() != "http://example.com/Path" {
			t.Errorf("unexpected seed %q", r.Seed())
		}
	})

	t.Run("rejects bad seeds", func(t *testing.T) {
		t.Parallel()

		for _, seed := range []string{"", "   ", "ftp://example.com", "https://"} {
			if _, err := NewResolver(seed, false); !errors.Is(err, ErrInvalidSeed) {
				t.Errorf("seed %q: expected ErrInvalidSeed, got %v", seed, err)
			}
		}
	})
}

// TestResolve tests reference resolution against a base URL.
func TestResolve(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("https://example.com", false)
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	base, _ := url.Parse("https://example.com/blog/post")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute", "https://example.com/about", "https://example.com/about"},
		{"root relative", "/contact", "https://example.com/contact"},
		{"relative", "next", "https://example.com/blog/next"},
		{"protocol relative", "//cdn.example.net/lib.js", "https://cdn.example.net/lib.js"},
		{"fragment stripped", "/page#section", "https://example.com/page"},
		{"fragment only", "#top", ""},
		{"empty", "", ""},
		{"mailto", "mailto:a@b.com", ""},
		{"javascript", "javascript:void(0)", ""},
		{"tel", "tel:+123456", ""},
		{"data uri", "data:image/png;base64,AAAA", ""},
		{"whitespace trimmed", "  /spaced  ", "https://example.com/spaced"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.Resolve(tt.ref, base); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

// TestCanonicalize tests URL normalization for dedup.
func TestCanonicalize(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("https://example.com", false)
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://EXAMPLE.com/Page", "https://example.com/Page"},
		{"strips fragment", "https://example.com/page#a", "https://example.com/page"},
		{"strips default https port", "https://example.com:443/x", "https://example.com/x"},
		{"strips default http port", "http://example.com:80/x", "http://example.com/x"},
		{"keeps custom port", "http://example.com:8080/x", "http://example.com:8080/x"},
		{"empty path becomes root", "https://example.com", "https://example.com/"},
		{"deep trailing slash kept", "https://example.com/a/", "https://example.com/a/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("fragment variants collapse to one form", func(t *testing.T) {
		t.Parallel()

		a := r.Canonicalize("https://example.com/page#a")
		b := r.Canonicalize("https://example.com/page#b")
		if a != b {
			t.Errorf("expected identical canonical forms, got %q and %q", a, b)
		}
	})
}

// TestSameDomain tests the domain comparison policy.
func TestSameDomain(t *testing.T) {
	t.Parallel()

	t.Run("exact host by default", func(t *testing.T) {
		t.Parallel()

		r, err := NewResolver("https://example.com", false)
		if err != nil {
			t.Fatalf("failed to create resolver: %v", err)
		}

		if !r.SameDomain("https://example.com/page") {
			t.Error("expected same host to match")
		}
		if !r.SameDomain("https://EXAMPLE.COM/page") {
			t.Error("expected case-insensitive match")
		}
		if r.SameDomain("https://www.example.com/") {
			t.Error("expected subdomain not to match by default")
		}
		if r.SameDomain("https://other.com/") {
			t.Error("expected foreign host not to match")
		}
	})

	t.Run("subdomains when enabled", func(t *testing.T) {
		t.Parallel()

		r, err := NewResolver("https://example.com", true)
		if err != nil {
			t.Fatalf("failed to create resolver: %v", err)
		}

		if !r.SameDomain("https://img.example.com/a.png") {
			t.Error("expected subdomain to match when enabled")
		}
		if r.SameDomain("https://notexample.com/") {
			t.Error("expected suffix match to respect the dot boundary")
		}
	})
}
