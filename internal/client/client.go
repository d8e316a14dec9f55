// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client talks to a running hub server so the CLI can browse and
// contribute without loading the dataset locally.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/browse"
	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/httputil"
)

// Error is a non-success response from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client calls the hub API at a base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	policy httputil.Policy
}

// New returns a client for baseURL (e.g. "http://localhost:8080").
func New(baseURL string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q must be http or https", baseURL)
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: 60 * time.Second},
		policy: httputil.Policy{Logger: logger},
	}, nil
}

// WithPolicy returns a copy of c using p for retries.
func (c *Client) WithPolicy(p httputil.Policy) *Client {
	cp := *c
	cp.policy = p
	return &cp
}

// Browse runs sel on the server.
func (c *Client) Browse(ctx context.Context, sel compose.Selection) (browse.Outcome, error) {
	var out browse.Outcome
	return out, c.post(ctx, "/v1/query", sel, &out)
}

// Query runs query text on the server.
func (c *Client) Query(ctx context.Context, text string) (browse.Outcome, error) {
	var out browse.Outcome
	return out, c.post(ctx, "/v1/sparql", map[string]string{"query": text}, &out)
}

// Submit sends a DOI to the contribution log and returns the server's
// confirmation.
func (c *Client) Submit(ctx context.Context, doi string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/v1/contributions", map[string]string{"doi": doi}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath(path).String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.policy)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &Error{Status: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
