// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed queries the arXiv API for papers submitted on a target date
// and filters them by keyword before they enter the pipeline.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const defaultMaxResults = 1000

// Source fetches date-bounded, category-scoped candidates from arXiv and
// returns the ones that pass the keyword and date predicates.
type Source struct {
	Client   *http.Client
	Keywords []string
	Target   time.Time
	Config   types.FeedConfig
}

// Fetch queries the feed for the window [target, target+1d), applies the
// keyword and exact-date predicates, and returns survivors in feed order.
// Transport, HTTP, or decode failures are returned as errors so the caller
// can tell "no matches" from "fetch failed". An empty keyword list is
// rejected before any request is made.
func (s *Source) Fetch(ctx context.Context) ([]types.PaperRecord, error) {
	filter := NewFilter(s.Keywords, s.Target)
	if len(filter.Keywords()) == 0 {
		return nil, fmt.Errorf("no keywords configured: an empty keyword list matches nothing")
	}
	if s.Config.Category == "" {
		return nil, fmt.Errorf("no feed category configured")
	}

	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	query := buildWindowQuery(s.Config.Category, s.Target)
	apiURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.PaperRecord
	for _, entry := range feed.Entries {
		abstract := strings.TrimSpace(entry.Summary)
		if !filter.Matches(abstract) {
			continue
		}

		published, err := time.Parse(time.RFC3339, entry.Published)
		if err != nil || !filter.SameDay(published) {
			continue
		}

		r := types.PaperRecord{
			Title:           strings.TrimSpace(entry.Title),
			Abstract:        abstract,
			EntryID:         entry.ID,
			PaperURL:        entry.pdfURL(),
			PublishedAt:     published,
			MatchedKeywords: filter.Keywords(),
		}
		if r.PaperURL == "" {
			continue
		}

		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}
		for _, c := range entry.Categories {
			r.Categories = append(r.Categories, c.Term)
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Updated); parseErr == nil {
			r.UpdatedAt = t
		}

		records = append(records, r)
	}
	return records, nil
}

// buildWindowQuery constructs the submittedDate-bounded query for one UTC
// calendar day, e.g. "cat:cs.LG AND submittedDate:[202401150000 TO 202401160000]".
func buildWindowQuery(category string, target time.Time) string {
	const dayFmt = "20060102"
	from := target.UTC().Format(dayFmt)
	to := target.UTC().AddDate(0, 0, 1).Format(dayFmt)
	return fmt.Sprintf("cat:%s AND submittedDate:[%s0000 TO %s0000]", category, from, to)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

// pdfURL returns the entry's PDF link, falling back to rewriting the abs URL
// when the feed omits the link element. The PDF URL is the record's stable
// identity across storage backends.
func (e arxivEntry) pdfURL() string {
	for _, l := range e.Links {
		if l.Title == "pdf" && l.Href != "" {
			return l.Href
		}
	}
	if strings.Contains(e.ID, "/abs/") {
		return strings.Replace(e.ID, "/abs/", "/pdf/", 1)
	}
	return ""
}
