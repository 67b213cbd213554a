// Package catalog fetches raw gift records from the RapidAPI Amazon search
// endpoint, falling back to an embedded offline catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultHost          = "real-time-amazon-data.p.rapidapi.com"
	defaultTimeout       = 10 * time.Second
	maxRecords           = 10
	maxResponseSizeBytes = 4 << 20
)

// Config is loaded with the RAPIDAPI prefix.
type Config struct {
	Key     string        `envconfig:"KEY"`
	Host    string        `envconfig:"HOST" default:"real-time-amazon-data.p.rapidapi.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// Source is what the search engine needs from a catalog.
type Source interface {
	Fetch(ctx context.Context, query string) []Product
}

// HTTPStatusError captures a non-2xx answer from the search API.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

type searchResponse struct {
	Data struct {
		Products []Product `json:"products"`
	} `json:"data"`
}

type Option func(*Client)

// WithBaseURL overrides https://{host}, mostly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// Client is the live catalog. It never returns an error to callers: every
// upstream failure is logged and answered from the offline catalog.
type Client struct {
	key        string
	host       string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) *Client {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		key:        strings.TrimSpace(cfg.Key),
		host:       host,
		baseURL:    "https://" + host,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch returns at most ten raw records for query in catalog order.
func (c *Client) Fetch(ctx context.Context, query string) []Product {
	if c.key == "" {
		log.Warn().Str("query", query).Msg("rapidapi key not configured, using offline catalog")
		return Offline(query)
	}

	products, err := c.search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("catalog search failed, using offline catalog")
		return Offline(query)
	}

	log.Debug().Str("query", query).Int("records", len(products)).Msg("catalog search completed")
	return products
}

func (c *Client) search(ctx context.Context, query string) ([]Product, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("country", "US")
	params.Set("sort_by", "RELEVANCE")
	params.Set("product_condition", "ALL")
	params.Set("is_prime", "false")
	params.Set("deals_and_discounts", "NONE")
	endpoint := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: c.baseURL + "/search", Body: string(buf)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	products := parsed.Data.Products
	if len(products) > maxRecords {
		products = products[:maxRecords]
	}
	return products, nil
}
