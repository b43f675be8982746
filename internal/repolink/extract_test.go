// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repolink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

func testExtractor(client *http.Client) *Extractor {
	return &Extractor{
		Client: client,
		Config: types.ExtractConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		},
	}
}

// --- stage 1: abstract regex ---

func TestScanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain github url", "Code at https://github.com/acme/diffuse for reproduction.", "https://github.com/acme/diffuse"},
		{"trailing period trimmed", "See https://github.com/acme/diffuse.", "https://github.com/acme/diffuse"},
		{"dots and dashes in repo", "https://github.com/acme-lab/diffuse.jl is public", "https://github.com/acme-lab/diffuse.jl"},
		{"gitlab host", "Released at http://gitlab.com/acme/diffuse", "http://gitlab.com/acme/diffuse"},
		{"www prefix", "https://www.github.com/acme/diffuse", "https://www.github.com/acme/diffuse"},
		{"first match in document order", "https://github.com/first/repo then https://github.com/second/repo", "https://github.com/first/repo"},
		{"no url", "We study diffusion models.", ""},
		{"unrelated host", "See https://example.com/acme/diffuse", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanText(tt.in); got != tt.want {
				t.Errorf("scanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractStage1NeedsNoNetwork(t *testing.T) {
	// A nil client would panic on any request; stage 1 must not make one.
	e := testExtractor(nil)
	var buf bytes.Buffer

	got := e.Extract(context.Background(),
		"https://arxiv.org/pdf/2401.11111v1",
		"Code is available at https://github.com/acme/diffuse.",
		&buf)
	if got != "https://github.com/acme/diffuse" {
		t.Errorf("Extract() = %q", got)
	}
}

// --- stages 2 and 3: page scan ---

func TestExtractStage2AbstractSection(t *testing.T) {
	var pagePath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagePath = r.URL.Path
		fmt.Fprint(w, `<html><body>
			<blockquote class="abstract">Code: https://github.com/acme/diffuse</blockquote>
			<div><h2>Introduction</h2><p>https://github.com/should/not-reach</p></div>
		</body></html>`)
	}))
	defer ts.Close()

	e := testExtractor(ts.Client())
	var buf bytes.Buffer

	got := e.Extract(context.Background(), ts.URL+"/pdf/2401.11111v1", "No link inline.", &buf)
	if got != "https://github.com/acme/diffuse" {
		t.Errorf("Extract() = %q", got)
	}
	if pagePath != "/abs/2401.11111v1" {
		t.Errorf("fetched %q, want the abs page", pagePath)
	}
}

func TestExtractStage2FindsAnchorHref(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div class="abstract">Our implementation is <a href="https://github.com/acme/diffuse">public</a>.</div>
		</body></html>`)
	}))
	defer ts.Close()

	e := testExtractor(ts.Client())
	var buf bytes.Buffer

	got := e.Extract(context.Background(), ts.URL+"/pdf/2401.11111v1", "nothing", &buf)
	if got != "https://github.com/acme/diffuse" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtractStage3Introduction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<blockquote class="abstract">No links here.</blockquote>
			<section><h2>1. Introduction</h2><p>Code at https://github.com/acme/intro-repo.</p></section>
		</body></html>`)
	}))
	defer ts.Close()

	e := testExtractor(ts.Client())
	var buf bytes.Buffer

	got := e.Extract(context.Background(), ts.URL+"/pdf/2401.11111v1", "nothing", &buf)
	if got != "https://github.com/acme/intro-repo" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtractNoLinkAnywhere(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><blockquote class="abstract">Nothing.</blockquote></body></html>`)
	}))
	defer ts.Close()

	e := testExtractor(ts.Client())
	var buf bytes.Buffer

	if got := e.Extract(context.Background(), ts.URL+"/pdf/2401.11111v1", "nothing", &buf); got != "" {
		t.Errorf("Extract() = %q, want empty", got)
	}
	if buf.Len() != 0 {
		t.Errorf("no warnings expected, got %q", buf.String())
	}
}

func TestExtractPageFailureIsWarningNotError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	e := testExtractor(ts.Client())
	var buf bytes.Buffer

	if got := e.Extract(context.Background(), ts.URL+"/pdf/2401.11111v1", "nothing", &buf); got != "" {
		t.Errorf("Extract() = %q, want empty", got)
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestRenderedPageURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://arxiv.org/pdf/2401.11111v1", "https://arxiv.org/abs/2401.11111v1"},
		{"https://arxiv.org/pdf/2401.11111v1.pdf", "https://arxiv.org/abs/2401.11111v1"},
		{"https://example.org/paper.pdf", "https://example.org/paper"},
		{"https://example.org/no-pdf-segment", ""},
	}
	for _, tt := range tests {
		if got := renderedPageURL(tt.in); got != tt.want {
			t.Errorf("renderedPageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
