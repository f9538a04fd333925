package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softTechSolutions2001/eduplatform-sub000/client"
)

func TestPerformTokenRefresh_Success(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "fresh-access",
			"expires_in":   900,
		})
	}))
	defer server.Close()

	refresher := &client.PlatformAuth{TokenURL: server.URL}
	access, rotated, expiresIn, err := refresher.PerformTokenRefresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", access)
	assert.Empty(t, rotated, "no rotation when the server omits refresh_token")
	assert.Equal(t, int64(900), expiresIn)
	assert.Equal(t, "old-refresh", gotBody["refresh_token"])
}

func TestPerformTokenRefresh_RotatesRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "fresh-access",
			"refresh_token": "rotated-refresh",
			"expires_in":    900,
		})
	}))
	defer server.Close()

	refresher := &client.PlatformAuth{TokenURL: server.URL}
	_, rotated, _, err := refresher.PerformTokenRefresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", rotated)
}

func TestPerformTokenRefresh_ErrorStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "refresh token revoked"})
	}))
	defer server.Close()

	refresher := &client.PlatformAuth{TokenURL: server.URL}
	_, _, _, err := refresher.PerformTokenRefresh(context.Background(), "revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "refresh token revoked")
}

func TestPerformTokenRefresh_DetailOnlyBodyIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some deployments answer 200 with an error detail.
		writeJSON(w, http.StatusOK, map[string]any{"detail": "account disabled"})
	}))
	defer server.Close()

	refresher := &client.PlatformAuth{TokenURL: server.URL}
	_, _, _, err := refresher.PerformTokenRefresh(context.Background(), "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account disabled")
}

func TestPerformTokenRefresh_MissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"expires_in": 900})
	}))
	defer server.Close()

	refresher := &client.PlatformAuth{TokenURL: server.URL}
	_, _, _, err := refresher.PerformTokenRefresh(context.Background(), "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

func TestPerformTokenRefresh_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "x"})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	refresher := &client.PlatformAuth{TokenURL: server.URL}
	_, _, _, err := refresher.PerformTokenRefresh(ctx, "whatever")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
