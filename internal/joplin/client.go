// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package joplin is a read-only client for the Joplin Clipper API, the
// local HTTP service the Joplin desktop application exposes for
// integrations. It covers the endpoints the exporter needs: ping, notes,
// notebooks, tags, and binary resources.
package joplin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/joplin-hexo/internal/httputil"
	"github.com/pdiddy/joplin-hexo/pkg/types"
)

const (
	// DefaultBaseURL is the Clipper service's default listen address.
	DefaultBaseURL = "http://localhost:41184"

	// pageLimit is the page size requested from collection endpoints.
	// The Clipper API caps pages at 100 items.
	pageLimit = 100

	// pingBody is the fixed response body of GET /ping.
	pingBody = "JoplinClipperServer"
)

const (
	noteFields     = "id,title,body,parent_id,created_time,updated_time,user_created_time,user_updated_time"
	notebookFields = "id,title,parent_id"
	tagFields      = "id,title"
	resourceFields = "id,title,filename,mime"
)

// Client talks to one Clipper endpoint. All methods are read-only and safe
// to call sequentially; the exporter never needs concurrent access.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	maxRetries int
	http       *http.Client
}

// NewClient builds a Client from connection settings and an API token.
// Zero-valued settings fall back to defaults.
func NewClient(cfg types.APIConfig, token string) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: timeout},
	}
}

// Ping verifies the Clipper service is reachable and answering. The service
// responds to GET /ping with the literal body "JoplinClipperServer".
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.get(ctx, "/ping", nil)
	if err != nil {
		return fmt.Errorf("pinging Joplin (is the Web Clipper service enabled?): %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return fmt.Errorf("reading ping response: %w", err)
	}
	if got := strings.TrimSpace(string(body)); got != pingBody {
		return fmt.Errorf("unexpected ping response %q: not a Joplin Clipper endpoint", got)
	}
	return nil
}

// Notes returns every note, paginating until the API reports no more pages.
func (c *Client) Notes(ctx context.Context) ([]types.Note, error) {
	return fetchAll[types.Note](ctx, c, "/notes", noteFields)
}

// NotesByTag returns every note carrying the tag with the given ID.
func (c *Client) NotesByTag(ctx context.Context, tagID string) ([]types.Note, error) {
	return fetchAll[types.Note](ctx, c, "/tags/"+url.PathEscape(tagID)+"/notes", noteFields)
}

// Notebooks returns every notebook (Joplin calls them folders).
func (c *Client) Notebooks(ctx context.Context) ([]types.Notebook, error) {
	return fetchAll[types.Notebook](ctx, c, "/folders", notebookFields)
}

// Tags returns every tag.
func (c *Client) Tags(ctx context.Context) ([]types.Tag, error) {
	return fetchAll[types.Tag](ctx, c, "/tags", tagFields)
}

// TagByTitle finds a tag by title. Joplin lower-cases tag titles on
// creation, so the match is case-insensitive. The API has no tag-by-title
// endpoint; the lookup lists all tags client-side.
func (c *Client) TagByTitle(ctx context.Context, title string) (types.Tag, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return types.Tag{}, err
	}
	for _, tag := range tags {
		if strings.EqualFold(tag.Title, title) {
			return tag, nil
		}
	}
	return types.Tag{}, fmt.Errorf("tag %q not found", title)
}

// Resource fetches the metadata record of a single resource.
func (c *Client) Resource(ctx context.Context, id string) (types.Resource, error) {
	params := url.Values{"fields": {resourceFields}}
	resp, err := c.get(ctx, "/resources/"+url.PathEscape(id), params)
	if err != nil {
		return types.Resource{}, err
	}
	defer resp.Body.Close()

	var r types.Resource
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.Resource{}, fmt.Errorf("parsing resource %s: %w", id, err)
	}
	return r, nil
}

// ResourceFile fetches the binary content of a resource.
func (c *Client) ResourceFile(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.get(ctx, "/resources/"+url.PathEscape(id)+"/file", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading resource %s: %w", id, err)
	}
	return data, nil
}

// page is the envelope the Clipper API wraps collection responses in.
type page struct {
	Items   json.RawMessage `json:"items"`
	HasMore bool            `json:"has_more"`
}

// fetchAll accumulates all pages of a collection endpoint. The Clipper API
// paginates with page/limit parameters and signals continuation through the
// has_more field.
func fetchAll[T any](ctx context.Context, c *Client, path, fields string) ([]T, error) {
	var all []T
	for pageNum := 1; ; pageNum++ {
		params := url.Values{
			"fields": {fields},
			"limit":  {strconv.Itoa(pageLimit)},
			"page":   {strconv.Itoa(pageNum)},
		}

		resp, err := c.get(ctx, path, params)
		if err != nil {
			return nil, err
		}

		var p page
		err = json.NewDecoder(resp.Body).Decode(&p)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing page %d of %s: %w", pageNum, path, err)
		}

		if len(p.Items) > 0 {
			var items []T
			if err := json.Unmarshal(p.Items, &items); err != nil {
				return nil, fmt.Errorf("parsing items on page %d of %s: %w", pageNum, path, err)
			}
			all = append(all, items...)
		}

		if !p.HasMore {
			return all, nil
		}
	}
}

// get performs an authenticated GET and returns the response on HTTP 200.
// Any other status is turned into an error; 429 has already been retried.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.token != "" {
		params.Set("token", c.token)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("Joplin API request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("Joplin API returned HTTP %d for %s", resp.StatusCode, path)
	}
	return resp, nil
}
