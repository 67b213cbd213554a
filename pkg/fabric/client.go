// Package fabric is a small REST client for the SignalWire Fabric resources
// the concierge provisions: external SWML handlers, their addresses and
// guest tokens.
package fabric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	handlersPath         = "/api/fabric/resources/external_swml_handlers"
	guestTokensPath      = "/api/fabric/guests/tokens"
	maxResponseSizeBytes = 2 << 20
	maxListPages         = 20
)

// Config is loaded with the SIGNALWIRE prefix.
type Config struct {
	SpaceName string        `envconfig:"SPACE_NAME"`
	ProjectID string        `envconfig:"PROJECT_ID"`
	Token     string        `envconfig:"TOKEN"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// Host returns the API host for the space. A bare space name gets the
// signalwire.com suffix; a value containing a dot is used as is.
func (c Config) Host() string {
	space := strings.TrimSpace(c.SpaceName)
	if space == "" {
		return ""
	}
	if strings.Contains(space, ".") {
		return space
	}
	return space + ".signalwire.com"
}

func (c Config) Configured() bool {
	return c.Host() != "" && strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.Token) != ""
}

var ErrNotConfigured = errors.New("fabric: space, project id and token are required")

// HTTPStatusError captures non-2xx Fabric responses.
type HTTPStatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fabric: %s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsConflict reports whether err is a 409 from Fabric, which is what a
// concurrent create of the same handler name produces.
func IsConflict(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict
}

type SWMLWebhook struct {
	Name              string `json:"name"`
	PrimaryRequestURL string `json:"primary_request_url"`
}

type SWMLHandler struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	SWMLWebhook SWMLWebhook `json:"swml_webhook"`
}

// Name is the handler's logical name, preferring the webhook name.
func (h SWMLHandler) Name() string {
	if h.SWMLWebhook.Name != "" {
		return h.SWMLWebhook.Name
	}
	return h.DisplayName
}

type Address struct {
	ID       string `json:"id"`
	Channels struct {
		Audio string `json:"audio"`
	} `json:"channels"`
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type createHandlerRequest struct {
	Name                 string `json:"name"`
	UsedFor              string `json:"used_for"`
	PrimaryRequestURL    string `json:"primary_request_url"`
	PrimaryRequestMethod string `json:"primary_request_method"`
}

type updateHandlerRequest struct {
	PrimaryRequestURL    string `json:"primary_request_url"`
	PrimaryRequestMethod string `json:"primary_request_method"`
}

type guestTokenRequest struct {
	AllowedAddresses []string `json:"allowed_addresses"`
	ExpireAt         int64    `json:"expire_at"`
}

type Option func(*Client)

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

type Client struct {
	baseURL    string
	projectID  string
	token      string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    "https://" + cfg.Host(),
		projectID:  strings.TrimSpace(cfg.ProjectID),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ListSWMLHandlers returns every external SWML handler in the space,
// following pagination links.
func (c *Client) ListSWMLHandlers(ctx context.Context) ([]SWMLHandler, error) {
	var all []SWMLHandler
	next := c.baseURL + handlersPath
	for page := 0; next != "" && page < maxListPages; page++ {
		var resp listResponse[SWMLHandler]
		if err := c.do(ctx, http.MethodGet, next, nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)
		next = c.resolve(resp.Links.Next)
	}
	return all, nil
}

func (c *Client) HandlerAddresses(ctx context.Context, handlerID string) ([]Address, error) {
	if strings.TrimSpace(handlerID) == "" {
		return nil, errors.New("fabric: handler id is required")
	}
	var resp listResponse[Address]
	if err := c.do(ctx, http.MethodGet, c.baseURL+handlersPath+"/"+handlerID+"/addresses", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateSWMLHandler creates a calling handler named name that POSTs to
// callbackURL and returns its id.
func (c *Client) CreateSWMLHandler(ctx context.Context, name, callbackURL string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, c.baseURL+handlersPath, createHandlerRequest{
		Name:                 name,
		UsedFor:              "calling",
		PrimaryRequestURL:    callbackURL,
		PrimaryRequestMethod: http.MethodPost,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("fabric: create handler response has no id")
	}
	return resp.ID, nil
}

func (c *Client) UpdateSWMLHandler(ctx context.Context, handlerID, callbackURL string) error {
	if strings.TrimSpace(handlerID) == "" {
		return errors.New("fabric: handler id is required")
	}
	return c.do(ctx, http.MethodPut, c.baseURL+handlersPath+"/"+handlerID, updateHandlerRequest{
		PrimaryRequestURL:    callbackURL,
		PrimaryRequestMethod: http.MethodPost,
	}, nil)
}

// CreateGuestToken issues a guest token limited to addressIDs.
func (c *Client) CreateGuestToken(ctx context.Context, addressIDs []string, expireAt time.Time) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, c.baseURL+guestTokensPath, guestTokenRequest{
		AllowedAddresses: addressIDs,
		ExpireAt:         expireAt.Unix(),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// resolve turns a pagination link into an absolute URL on this client's host.
func (c *Client) resolve(link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return c.baseURL + "/" + strings.TrimLeft(link, "/")
}

func (c *Client) do(ctx context.Context, method, url string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("fabric: marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("fabric: build request: %w", err)
	}
	req.SetBasicAuth(c.projectID, c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fabric: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("fabric: read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(raw) > 4096 {
			raw = raw[:4096]
		}
		return &HTTPStatusError{StatusCode: resp.StatusCode, Method: method, URL: url, Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("fabric: decode response: %w", err)
	}
	return nil
}
