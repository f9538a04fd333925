package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PlatformAuth implements the auth.TokenRefresher interface against the
// platform's token endpoint.
type PlatformAuth struct {
	TokenURL   string
	HTTPClient *http.Client
}

// PerformTokenRefresh exchanges refreshToken for a new access token. The
// platform may rotate the refresh token; when it does, the new value is
// returned, otherwise newRefreshToken is empty.
func (p *PlatformAuth) PerformTokenRefresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, expiresIn int64, err error) {
	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to encode token refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create token refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to send token refresh request: %w", err)
	}
	defer closeResponseBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to read token refresh response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", "", 0, fmt.Errorf("token refresh failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		ExpiresIn    int64  `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
		Detail       string `json:"detail"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", 0, fmt.Errorf("failed to parse token refresh response: %w", err)
	}
	if result.Detail != "" && result.AccessToken == "" {
		return "", "", 0, fmt.Errorf("token refresh API error: %s", result.Detail)
	}
	if result.AccessToken == "" {
		return "", "", 0, fmt.Errorf("token refresh response carried no access token")
	}

	return result.AccessToken, result.RefreshToken, result.ExpiresIn, nil
}
