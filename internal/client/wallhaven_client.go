package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wallfetch/api/internal/config"
	"github.com/wallfetch/api/internal/model"
)

// WallhavenClient handles communication with the Wallhaven catalog API
type WallhavenClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewWallhavenClient creates a client without API key or proxy.
// Use ForJob to get a client bound to one job's settings.
func NewWallhavenClient(cfg *config.WallhavenConfig) *WallhavenClient {
	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &WallhavenClient{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
	}
}

// ForJob returns a copy of the client that sends the job's API key and routes
// every request through the job's proxy.
func (c *WallhavenClient) ForJob(job *model.JobConfig) (*WallhavenClient, error) {
	transport, err := NewProxyTransport(job.Proxy)
	if err != nil {
		return nil, err
	}
	return &WallhavenClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   c.httpClient.Timeout,
		},
		baseURL: c.baseURL,
		apiKey:  job.APIKey,
	}, nil
}

// SearchQuery builds the search endpoint query for one page of a job.
func SearchQuery(job *model.JobConfig, page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("categories", job.Categories)
	q.Set("purity", job.Purity)
	q.Set("sorting", string(job.Sorting))
	q.Set("order", string(job.Order))

	if job.Resolution != "" {
		q.Set("resolutions", job.Resolution)
	} else if job.AtLeast != "" {
		q.Set("atleast", job.AtLeast)
	}
	if job.Ratios != "" {
		q.Set("ratios", job.Ratios)
	}
	if job.Color != "" {
		q.Set("colors", job.Color)
	}
	if job.Sorting == model.SortingToplist && job.TopRange != "" {
		q.Set("topRange", job.TopRange)
	}
	if job.PerPage != "" {
		q.Set("per_page", job.PerPage)
	}
	if job.AIArtFilter != "" {
		q.Set("ai_art_filter", job.AIArtFilter)
	}

	switch job.Source {
	case model.SourceSearch:
		if job.Query != "" {
			q.Set("q", job.Query)
		}
	case model.SourceTag:
		if job.Query != "" {
			q.Set("q", "id:"+job.Query)
		}
	case model.SourceUserUploads:
		if job.User != "" {
			q.Set("q", "@"+job.User)
		}
	}

	return q
}

// Search fetches one page of the search endpoint
func (c *WallhavenClient) Search(ctx context.Context, job *model.JobConfig, page int) (*model.SearchResponse, error) {
	var resp model.SearchResponse
	if err := c.getJSON(ctx, "/search", SearchQuery(job, page), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CollectionItems fetches one page of a user's collection
func (c *WallhavenClient) CollectionItems(ctx context.Context, user, collectionID string, page int) (*model.SearchResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var resp model.SearchResponse
	path := fmt.Sprintf("/collections/%s/%s", url.PathEscape(user), url.PathEscape(collectionID))
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Collections lists the collections owned by user
func (c *WallhavenClient) Collections(ctx context.Context, user string) ([]model.Collection, error) {
	var resp model.CollectionsResponse
	if err := c.getJSON(ctx, "/collections/"+url.PathEscape(user), url.Values{}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ProbeSize returns the Content-Length of an image without downloading it.
// A missing header is reported as 0.
func (c *WallhavenClient) ProbeSize(ctx context.Context, imageURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAPIKeyHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return 0, nil
	}
	return resp.ContentLength, nil
}

// Download streams an image into w and returns the number of bytes written
func (c *WallhavenClient) Download(ctx context.Context, imageURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAPIKeyHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to write image: %w", err)
	}
	return n, nil
}

func (c *WallhavenClient) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	reqURL := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallhaven API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *WallhavenClient) setAPIKeyHeader(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
