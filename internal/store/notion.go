// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// notionAPIBase is the Notion API endpoint. Declared as a var so tests can
// substitute an httptest server.
var notionAPIBase = "https://api.notion.com/v1"

const notionVersion = "2022-06-28"

// NotionStore persists records as pages of a Notion database. Each Persist
// maps to a single page-create call; properties correspond 1:1 to StoredView
// fields.
type NotionStore struct {
	client *http.Client
	cfg    types.NotionConfig
}

// NewNotionStore validates the credentials and returns a store. Missing
// token or database ID is a configuration failure and must surface before
// any fetch.
func NewNotionStore(cfg types.NotionConfig, client *http.Client) (*NotionStore, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion store: missing integration token")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion store: missing database ID")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &NotionStore{client: client, cfg: cfg}, nil
}

// Name returns the backend identifier.
func (s *NotionStore) Name() string { return "notion" }

// Notion page-create JSON structures.
type notionCreateRequest struct {
	Parent     notionParent   `json:"parent"`
	Properties notionPageProp `json:"properties"`
}

type notionParent struct {
	DatabaseID string `json:"database_id"`
}

type notionPageProp struct {
	Title         notionTitleProp       `json:"Title"`
	PaperURL      notionURLProp         `json:"Paper URL"`
	GitHubURL     *notionURLProp        `json:"GitHub URL,omitempty"`
	PublishedDate notionDateProp        `json:"Published Date"`
	Keywords      notionMultiSelectProp `json:"Keywords"`
}

type notionTitleProp struct {
	Title []notionRichText `json:"title"`
}

type notionRichText struct {
	Type string            `json:"type"`
	Text notionTextContent `json:"text"`
}

type notionTextContent struct {
	Content string `json:"content"`
}

type notionURLProp struct {
	URL string `json:"url"`
}

type notionDateProp struct {
	Date notionDate `json:"date"`
}

type notionDate struct {
	Start string `json:"start"`
}

type notionMultiSelectProp struct {
	MultiSelect []notionOption `json:"multi_select"`
}

type notionOption struct {
	Name string `json:"name"`
}

// Persist creates one database page for the view. The repository URL
// property is omitted when no link was found.
func (s *NotionStore) Persist(ctx context.Context, view types.StoredView) error {
	props := notionPageProp{
		Title: notionTitleProp{Title: []notionRichText{
			{Type: "text", Text: notionTextContent{Content: view.Title}},
		}},
		PaperURL:      notionURLProp{URL: view.PaperURL},
		PublishedDate: notionDateProp{Date: notionDate{Start: view.PublishedDate}},
	}
	if view.RepositoryURL != "" {
		props.GitHubURL = &notionURLProp{URL: view.RepositoryURL}
	}
	for _, kw := range view.Keywords {
		props.Keywords.MultiSelect = append(props.Keywords.MultiSelect, notionOption{Name: kw})
	}

	payload := notionCreateRequest{
		Parent:     notionParent{DatabaseID: s.cfg.DatabaseID},
		Properties: props,
	}

	resp, err := s.post(ctx, notionAPIBase+"/pages", payload)
	if err != nil {
		return fmt.Errorf("creating page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("creating page: %s", apiErrorMessage(resp))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Notion database-query JSON structures.
type notionQueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
}

type notionQueryResponse struct {
	Results []struct {
		Properties struct {
			PaperURL struct {
				URL string `json:"url"`
			} `json:"Paper URL"`
		} `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// ExistingPaperURLs pages through the whole database following
// has_more/next_cursor until exhausted.
func (s *NotionStore) ExistingPaperURLs(ctx context.Context) (map[string]struct{}, error) {
	urls := make(map[string]struct{})
	queryURL := fmt.Sprintf("%s/databases/%s/query", notionAPIBase, s.cfg.DatabaseID)

	cursor := ""
	for {
		resp, err := s.post(ctx, queryURL, notionQueryRequest{StartCursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("querying database: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			msg := apiErrorMessage(resp)
			resp.Body.Close()
			return nil, fmt.Errorf("querying database: %s", msg)
		}

		var page notionQueryResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing database query response: %w", err)
		}

		for _, r := range page.Results {
			if u := r.Properties.PaperURL.URL; u != "" {
				urls[u] = struct{}{}
			}
		}

		if !page.HasMore {
			return urls, nil
		}
		cursor = page.NextCursor
	}
}

func (s *NotionStore) post(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	return httputil.DoWithRetry(ctx, s.client, req, 0)
}

// apiErrorMessage extracts Notion's error message from a non-2xx response,
// falling back to the status code.
func apiErrorMessage(resp *http.Response) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
