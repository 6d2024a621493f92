package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomnomnom/linkheader"
)

const maxErrorBody = 4096

// Page is one GET response. Next is the rel="next" target of the Link header.
type Page struct {
	URL  string
	Body []byte
	Next string
}

// Client is the authenticated HTTP session for one instance. It holds no
// pagination state and can be shared by every open timeline.
type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
	logger      *slog.Logger
	newKey      func() string
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL, accessToken string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        httpClient,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		newKey:      newIdempotencyKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches baseURL+endpoint with the given query.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (Page, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return c.GetURL(ctx, fullURL)
}

// GetURL fetches an absolute URL, typically a next link from a previous page.
func (c *Client) GetURL(ctx context.Context, rawURL string) (Page, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("GET %s request failed: %w", endpointOf(rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Page{}, newAPIError(http.MethodGet, endpointOf(rawURL), resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("read %s response: %w", endpointOf(rawURL), err)
	}

	page := Page{URL: rawURL, Body: body, Next: nextLink(resp.Header)}
	if page.Next != "" {
		c.logger.Debug("next link", "endpoint", endpointOf(rawURL), "next", page.Next)
	}
	return page, nil
}

// Post sends a form-encoded POST to baseURL+endpoint.
func (c *Client) Post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	return c.post(ctx, endpoint, form, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values, header http.Header) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(http.MethodPost, endpoint, resp.StatusCode, data)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	page, err := c.Get(ctx, endpoint, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(page.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, fullURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func nextLink(header http.Header) string {
	links := linkheader.ParseMultiple(header.Values("Link")).FilterByRel("next")
	if len(links) == 0 {
		return ""
	}
	return strings.TrimSpace(links[0].URL)
}

func endpointOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return rawURL
	}
	return parsed.Path
}
