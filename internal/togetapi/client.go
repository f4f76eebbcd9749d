package togetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound reports a group or list the API does not know.
var ErrNotFound = errors.New("not found")

// Fetcher is the subset of the to-get API the companion host uses.
type Fetcher interface {
	FetchGroup(ctx context.Context, groupID string) (*Group, error)
	FetchList(ctx context.Context, groupID, listID string) (*List, error)
	UpdateItem(ctx context.Context, groupID, listID, item string, collected bool) error
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the to-get HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "http://to-get.appspot.com"
	defaultUserAgent = "togetter/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the API at baseURL (host:port or URL).
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchGroup retrieves a group and the lists it contains.
func (c *Client) FetchGroup(ctx context.Context, groupID string) (*Group, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(groupID) == "" {
		return nil, fmt.Errorf("group id required")
	}
	var payload Group
	if err := c.do(ctx, http.MethodGet, groupPath(groupID), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchList retrieves one list with its items.
func (c *Client) FetchList(ctx context.Context, groupID, listID string) (*List, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("group and list id required")
	}
	var payload List
	if err := c.do(ctx, http.MethodGet, listPath(groupID, listID), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateItem sets the collected flag of the named item.
func (c *Client) UpdateItem(ctx context.Context, groupID, listID, item string, collected bool) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(listID) == "" {
		return fmt.Errorf("group and list id required")
	}
	values := url.Values{}
	values.Set("action", "update")
	values.Set("item", item)
	values.Set("collected", strconv.FormatBool(collected))
	return c.do(ctx, http.MethodPost, listPath(groupID, listID), values, nil)
}

func groupPath(groupID string) string {
	return "/api/" + url.PathEscape(groupID) + "/"
}

func listPath(groupID, listID string) string {
	return groupPath(groupID) + "lists/" + url.PathEscape(listID) + "/"
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, dest any) error {
	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("api %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
