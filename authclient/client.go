package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"codereviewhub/backend/session"
)

// Client wraps the remote authentication API and the local session
// store. The remote API owns accounts and profiles; this client only
// forwards calls and keeps the cached session blob in sync.
type Client struct {
	baseURL  string
	client   *http.Client
	sessions session.Store
}

func NewClient(baseURL string, sessions session.Store) *Client {
	return &Client{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
	}
}

// NewDefaultClient reads AUTH_API_URL and picks the session backend
// from the environment.
func NewDefaultClient() (*Client, error) {
	baseURL := os.Getenv("AUTH_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("AUTH_API_URL environment variable is not set")
	}
	sessions, err := session.NewStoreFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %v", err)
	}
	return NewClient(baseURL, sessions), nil
}

// NewClientWith wires an explicit HTTP client, used by tests.
func NewClientWith(baseURL string, httpClient *http.Client, sessions session.Store) *Client {
	return &Client{baseURL: baseURL, client: httpClient, sessions: sessions}
}

// Register forwards the account payload to the remote API and returns
// the created-account response. Nothing is cached.
func (c *Client) Register(ctx context.Context, userData map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, "POST", "/register", "", userData)
}

// Login authenticates against the remote API. When the response
// carries a token the profile is fetched immediately and the shallow
// merge of both payloads (profile fields winning) replaces the cached
// session; otherwise the raw response is cached as-is.
func (c *Client) Login(ctx context.Context, credentials map[string]interface{}) (map[string]interface{}, error) {
	data, err := c.do(ctx, "POST", "/login", "", credentials)
	if err != nil {
		return nil, err
	}

	token, _ := data["token"].(string)
	if token != "" {
		profile, err := c.do(ctx, "GET", "/user", token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch profile after login: %w", err)
		}

		merged := map[string]interface{}{}
		for k, v := range data {
			merged[k] = v
		}
		for k, v := range profile {
			merged[k] = v
		}

		if err := c.replaceSession(ctx, merged); err != nil {
			return nil, err
		}
		return merged, nil
	}

	if err := c.replaceSession(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Logout informs the remote API and clears the local session. The
// session always ends cleared, even when the remote call fails; a
// remote failure is still returned after the clear.
func (c *Client) Logout(ctx context.Context) error {
	token := c.sessionToken(ctx)
	_, remoteErr := c.do(ctx, "POST", "/logout", token, nil)
	if remoteErr != nil {
		log.Printf("Remote logout failed, clearing local session anyway: %v", remoteErr)
	}

	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return remoteErr
}

// GetProfile fetches the profile, merges it into the cached session
// (profile fields winning) and returns the raw remote response, not
// the merged blob — the original contract is asymmetric on purpose.
func (c *Client) GetProfile(ctx context.Context) (map[string]interface{}, error) {
	profile, err := c.do(ctx, "GET", "/user", c.sessionToken(ctx), nil)
	if err != nil {
		return nil, err
	}
	if _, err := c.sessions.Merge(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile patches the profile remotely, merges the response into
// the cached session and returns the raw remote response (same
// asymmetry as GetProfile).
func (c *Client) UpdateProfile(ctx context.Context, userData map[string]interface{}) (map[string]interface{}, error) {
	updated, err := c.do(ctx, "PATCH", "/user", c.sessionToken(ctx), userData)
	if err != nil {
		return nil, err
	}
	if _, err := c.sessions.Merge(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) replaceSession(ctx context.Context, fields map[string]interface{}) error {
	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	if _, err := c.sessions.Merge(ctx, fields); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (c *Client) sessionToken(ctx context.Context) string {
	cached, err := c.sessions.Load(ctx)
	if err != nil {
		log.Printf("Failed to load session: %v", err)
		return ""
	}
	token, _ := cached["token"].(string)
	return token
}

func (c *Client) do(ctx context.Context, method string, path string, token string, body map[string]interface{}) (map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	data := map[string]interface{}{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &data); err != nil {
			return nil, fmt.Errorf("failed to parse response: %v", err)
		}
	}
	return data, nil
}
