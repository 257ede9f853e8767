package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"codereviewhub/backend/types"
)

const defaultTimeout = 60 * time.Second

// Client calls the external AI reviewer. The reviewer is opaque: it
// takes code and a language and returns the structured review result.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient reads REVIEWER_API_URL, REVIEWER_API_KEY and the optional
// REVIEWER_TIMEOUT (seconds). The timeout bounds the whole review call;
// expiry is reported as an ordinary error.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("REVIEWER_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("REVIEWER_API_URL environment variable is not set")
	}
	key := os.Getenv("REVIEWER_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("REVIEWER_API_KEY environment variable is not set")
	}

	timeout := defaultTimeout
	if raw := os.Getenv("REVIEWER_TIMEOUT"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid REVIEWER_TIMEOUT: %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  key,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// NewClientWith wires an explicit endpoint and HTTP client, used by tests.
func NewClientWith(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, client: httpClient}
}

type reviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Review submits the code for review and returns the reviewer's raw
// structured result.
func (c *Client) Review(ctx context.Context, code string, language string) (*types.ReviewResult, error) {
	payload, err := json.Marshal(reviewRequest{Code: code, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result types.ReviewResult
	err = retryWithBackoff(ctx, 3, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		httpResp, err := c.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if httpResp.StatusCode == 429 {
			return &rateLimitError{}
		}
		if httpResp.StatusCode == 401 || httpResp.StatusCode == 403 {
			return &authError{message: string(respBody)}
		}
		if httpResp.StatusCode >= 500 {
			return &serverError{statusCode: httpResp.StatusCode, body: string(respBody)}
		}
		if httpResp.StatusCode != 200 {
			return fmt.Errorf("reviewer error (status %d): %s", httpResp.StatusCode, string(respBody))
		}

		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if result.Feedback == "" {
			return fmt.Errorf("empty feedback in reviewer response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
