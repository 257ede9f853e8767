package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"codereviewhub/backend/types"
)

// VerifyToken resolves a bearer token to its user profile via the
// remote auth API (AUTH_API_URL). Authentication is owned by that
// service; this backend only verifies and reads the profile.
func VerifyToken(token string) (*types.User, error) {
	baseURL := os.Getenv("AUTH_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("AUTH_API_URL environment variable is not set")
	}

	req, err := http.NewRequest("GET", baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Add("Accept", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("auth API error: %s", string(body))
	}

	var user types.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %v", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("auth API returned no user id")
	}

	return &user, nil
}
