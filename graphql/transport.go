// Copyright (c) The duochat authors. All rights reserved.

package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gitlab.com/duo-console/duochat/duochat"
)

const graphqlPath = "/api/graphql"

// Client sends GraphQL queries and mutations to a GitLab instance with
// bearer-token authorization. It implements [duochat.Transport]. Use [New]
// to create one.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	headers    map[string]string
}

// Verify interface compliance at compile time.
var _ duochat.Transport = (*Client)(nil)

// New creates a Client for the GitLab instance at baseURL, authenticating
// with the given personal access token.
func New(baseURL, token string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		timeout := cfg.timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
		if cfg.insecureTLS {
			httpClient.Transport = insecureTransport()
		}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(baseURL, "/") + graphqlPath,
		token:      token,
		headers:    cfg.headers,
	}
}

// request is the JSON body of a GraphQL POST.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the envelope every GraphQL reply uses.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts one query with its variables and returns the data document.
// Connection failures and non-success statuses yield a
// [duochat.TransportError]; a populated errors list yields a
// [duochat.ProtocolError].
func (c *Client) Send(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, &duochat.TransportError{Message: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &duochat.TransportError{Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &duochat.TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "graphql request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &duochat.TransportError{
			StatusCode: resp.StatusCode,
			Message:    bodySnippet(resp.Body),
		}
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &duochat.TransportError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return nil, &duochat.ProtocolError{Messages: msgs}
	}

	return envelope.Data, nil
}

// bodySnippet reads the start of an error body for diagnostics.
func bodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
