// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repolink locates a code-repository URL for a paper on a
// best-effort basis. Absence of a link is an expected outcome, not an error.
package repolink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// repoPattern matches hosted-repository URLs of the owner/repo shape, with
// path segments restricted to alphanumerics, dot, dash, and underscore.
var repoPattern = regexp.MustCompile(`https?://(?:www\.)?(?:github\.com|gitlab\.com)/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+`)

// Extractor scans paper content for a repository link.
type Extractor struct {
	Client *http.Client
	Config types.ExtractConfig
}

// Extract runs the ordered extraction strategy and returns the first
// repository URL found, or "" when none is found:
//
//  1. regex scan of the abstract text, no network involved;
//  2. fetch the paper's rendered abs page and scan its abstract section;
//  3. scan the same page's introduction section.
//
// Network or parse failures in stages 2-3 are logged to w as warnings and
// treated as "no match at this stage"; they never abort the record.
func (e *Extractor) Extract(ctx context.Context, paperURL, abstract string, w io.Writer) string {
	if url := scanText(abstract); url != "" {
		return url
	}

	pageURL := renderedPageURL(paperURL)
	if pageURL == "" {
		return ""
	}

	doc, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		fmt.Fprintf(w, "  warning: repository link scan of %s failed: %v\n", pageURL, err)
		return ""
	}

	if url := scanSelection(doc.Find("blockquote.abstract, div.abstract, section#abstract")); url != "" {
		return url
	}
	return scanIntroduction(doc)
}

// renderedPageURL derives the readable abs page from the PDF URL. An empty
// result means the URL has no recognizable raw/pdf segment and stages 2-3
// cannot run.
func renderedPageURL(paperURL string) string {
	if !strings.Contains(paperURL, "/pdf/") && !strings.HasSuffix(paperURL, ".pdf") {
		return ""
	}
	page := strings.Replace(paperURL, "/pdf/", "/abs/", 1)
	return strings.TrimSuffix(page, ".pdf")
}

func (e *Extractor) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, e.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("page request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return doc, nil
}

// scanText returns the first repository URL in s, in document order, with
// trailing sentence punctuation trimmed.
func scanText(s string) string {
	match := repoPattern.FindString(s)
	return strings.TrimRight(match, ".")
}

// scanSelection scans a page section: first its visible text, then the href
// of each anchor, since pages often link the repository without spelling the
// URL out in prose.
func scanSelection(sel *goquery.Selection) string {
	if url := scanText(sel.Text()); url != "" {
		return url
	}
	var found string
	sel.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		found = scanText(href)
		return found == ""
	})
	return found
}

// scanIntroduction finds a section or div whose leading heading reads
// "introduction" and scans it.
func scanIntroduction(doc *goquery.Document) string {
	var found string
	doc.Find("section, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading := s.ChildrenFiltered("h1, h2, h3, h4").First().Text()
		if !strings.Contains(strings.ToLower(heading), "introduction") {
			return true
		}
		found = scanSelection(s)
		return found == ""
	})
	return found
}
