package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/you/chamber/internal/types"
)

const maxBody = 4 << 20

// HTTPError is a non-2xx answer from a liquidity source.
type HTTPError struct {
	Source types.LiquiditySource
	Status int
	URL    string
	Body   string
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(e.Body)
	if len(b) > 240 {
		b = b[:240] + "…"
	}
	if b == "" {
		return fmt.Sprintf("%s http %d %s", e.Source, e.Status, e.URL)
	}
	return fmt.Sprintf("%s http %d %s: %s", e.Source, e.Status, e.URL, b)
}

// Client is the HTTP plumbing shared by the source clients.
type Client struct {
	Source  types.LiquiditySource
	BaseURL string
	HTTP    *http.Client
	Headers http.Header
}

func NewClient(source types.LiquiditySource, baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		Source:  source,
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    hc,
		Headers: http.Header{},
	}
}

// Get issues GET BaseURL+path?query and returns the body of a 2xx answer.
func (c *Client) Get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// PostJSON issues POST BaseURL+path with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", c.Source, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.Source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", c.Source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Source: c.Source, Status: resp.StatusCode, URL: req.URL.Redacted(), Body: string(body)}
	}
	return body, nil
}
