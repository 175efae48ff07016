// Package client calls a chalkboard server's generation endpoint.
package client

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

	"github.com/yungbote/chalkboard/internal/diagram"
)

const SourceHeader = "X-Diagram-Source"

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: base url required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, hc: hc}, nil
}

// HTTPError is a non-2xx reply. Message holds the server's {"error"} text
// when it sent one.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// Generate posts topic to /api/generate and decodes the diagram response.
func (c *Client) Generate(ctx context.Context, topic string) (diagram.Response, error) {
	resp, _, err := c.GenerateWithSource(ctx, topic)
	return resp, err
}

// GenerateWithSource also reports whether the server used its AI provider
// or fallback content.
func (c *Client) GenerateWithSource(ctx context.Context, topic string) (diagram.Response, string, error) {
	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return diagram.Response{}, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return diagram.Response{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return diagram.Response{}, "", err
	}
	raw, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if err != nil {
		return diagram.Response{}, "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return diagram.Response{}, "", parseHTTPError(res.StatusCode, raw)
	}
	out, _, err := diagram.ParseResponse(raw)
	if err != nil {
		return diagram.Response{}, "", fmt.Errorf("decode response: %w", err)
	}
	return out, res.Header.Get(SourceHeader), nil
}

// Topics fetches the server's canned topic list.
func (c *Client) Topics(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/topics", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, parseHTTPError(res.StatusCode, raw)
	}
	var out struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Topics, nil
}

func parseHTTPError(status int, raw []byte) *HTTPError {
	e := &HTTPError{StatusCode: status, Body: strings.TrimSpace(string(raw))}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		e.Message = strings.TrimSpace(payload.Error)
	}
	return e
}
