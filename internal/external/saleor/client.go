// Package saleor is a client for the Saleor GraphQL API. It covers the
// operations the bridge needs: catalog provisioning, user and checkout
// management, and order fulfillment.
package saleor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"CourseBridge/pkg/correlation"
	"CourseBridge/pkg/logger"
)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
	retry   RetryConfig
	log     *logger.Logger
}

// NewClient creates a client for the Saleor API at baseURL. A nil httpClient
// gets a default with the given timeout.
func NewClient(baseURL string, tokens *TokenStore, timeout time.Duration, retry RetryConfig, l *logger.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
		retry:   retry,
		log:     l,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// execute posts the GraphQL document with variables and decodes the response
// data into out. Transport failures and 5xx responses are retried with
// backoff; API-level errors are surfaced as *APIError and are final.
func (c *Client) execute(ctx context.Context, operation, document string, variables map[string]any, out any) error {
	return doWithRetry(ctx, c.retry, func() error {
		return c.do(ctx, operation, document, variables, out)
	})
}

func (c *Client) do(ctx context.Context, operation, document string, variables map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: document, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if corrID := correlation.FromContext(ctx); corrID != "" {
		req.Header.Set(correlation.HeaderName, corrID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, operation, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, operation, resp.Status)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("saleor %s: %s: %s", operation, resp.Status, string(raw))
	}

	var gres gqlResponse
	if err := json.Unmarshal(raw, &gres); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	if len(gres.Errors) > 0 {
		return &APIError{Operation: operation, Errors: gres.Errors}
	}

	if out != nil {
		if err := json.Unmarshal(gres.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", operation, err)
		}
	}

	return nil
}

// payloadErrors converts a mutation payload's errors field into an *APIError.
func payloadErrors(operation string, errs []GraphQLError) error {
	if len(errs) == 0 {
		return nil
	}
	return &APIError{Operation: operation, Errors: errs}
}
