// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package connectors provides clients for the external data sources the
// capability fleet consults, currently GraphQL endpoints such as the
// Uniswap v3 subgraph.
package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GraphQLClient executes queries against a single GraphQL endpoint.
type GraphQLClient struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
}

// GraphQLOption configures the GraphQLClient.
type GraphQLOption func(*GraphQLClient)

// WithGraphQLHeader adds a custom header to requests.
func WithGraphQLHeader(key, value string) GraphQLOption {
	return func(c *GraphQLClient) {
		c.headers[key] = value
	}
}

// WithGraphQLBearerToken adds a Bearer token for authentication.
func WithGraphQLBearerToken(token string) GraphQLOption {
	return func(c *GraphQLClient) {
		c.headers["Authorization"] = "Bearer " + token
	}
}

// WithGraphQLAPIKey adds an API key header.
func WithGraphQLAPIKey(key, headerName string) GraphQLOption {
	return func(c *GraphQLClient) {
		c.headers[headerName] = key
	}
}

// WithGraphQLHTTPClient sets a custom HTTP client.
func WithGraphQLHTTPClient(client *http.Client) GraphQLOption {
	return func(c *GraphQLClient) {
		c.client = client
	}
}

// NewGraphQLClient creates a client for the given endpoint.
func NewGraphQLClient(endpoint string, opts ...GraphQLOption) *GraphQLClient {
	c := &GraphQLClient{
		endpoint: endpoint,
		client:   http.DefaultClient,
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the GraphQL endpoint URL.
func (c *GraphQLClient) Endpoint() string {
	return c.endpoint
}

// Query sends a GraphQL query and unmarshals the data payload into out.
// A response carrying GraphQL errors is returned as an error even when the
// HTTP status is 200.
func (c *GraphQLClient) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	reqBody := map[string]interface{}{
		"query": query,
	}
	if len(variables) > 0 {
		reqBody["variables"] = variables
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GraphQL request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", result.Errors[0].Message)
	}

	if out != nil && len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}
