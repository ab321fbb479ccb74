package letterboxd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"showdown/internal/config"
	"showdown/internal/services"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client fetches Letterboxd pages with the configured identity and timeout.
type Client struct {
	baseURL   string
	userAgent string
	client    HTTPDoer
}

// NewClient constructs a Letterboxd client. A nil doer falls back to a plain
// http.Client using the configured timeout.
func NewClient(cfg *config.Config, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: time.Duration(cfg.Letterboxd.TimeoutSeconds) * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.Letterboxd.BaseURL, "/"),
		userAgent: cfg.Letterboxd.UserAgent,
		client:    doer,
	}
}

// BaseURL returns the configured site root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// IndexURL returns the showdown index location.
func (c *Client) IndexURL() string { return c.baseURL + "/showdown/" }

// CrewListURL returns the crew list location for a showdown slug.
func (c *Client) CrewListURL(slug string) string {
	return c.baseURL + "/crew/list/showdown-" + slug + "/"
}

// Fetch retrieves one page. Failures carry the catalog fetch marker so the
// run pipeline aborts before any state mutation.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "letterboxd", "fetch", "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "letterboxd", "fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, services.Wrap(services.ErrFetch, "letterboxd", "fetch", fmt.Sprintf("%s returned %d", url, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "letterboxd", "fetch", "read response body", err)
	}
	return data, nil
}
