package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/softTechSolutions2001/eduplatform-sub000/auth"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/reqkey"
)

// defaultTimeout caps every individual transport attempt.
const defaultTimeout = 15 * time.Second

// Config wires a Client together. BaseURL and Store are required; the
// rest defaults to something sensible.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.eduplatform.example/v1".
	BaseURL string
	// HTTPClient overrides the default transport (15s per-attempt timeout).
	HTTPClient *http.Client
	// Store holds the session credential.
	Store *auth.TokenStore
	// Refresher performs the raw token refresh call. Defaults to a
	// PlatformAuth pointed at BaseURL.
	Refresher auth.TokenRefresher
	// Retry bounds transient transport retries. Zero value means
	// DefaultRetryPolicy.
	Retry RetryPolicy
	// OnAuthFailure fires once per exhausted refresh cycle, after local
	// credentials have been cleared.
	OnAuthFailure func()
}

// Client is the entry point for every platform API call. It coalesces
// identical in-flight requests, caches read results, refreshes expired
// credentials behind a single flight, and retries transient transport
// failures. All methods are safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *auth.TokenStore
	coord   *auth.Coordinator
	cache   *Cache
	retry   RetryPolicy
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("token store cannot be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	refresher := cfg.Refresher
	if refresher == nil {
		refresher = &PlatformAuth{TokenURL: baseURL + "/token/refresh/", HTTPClient: httpClient}
	}
	coord := auth.NewCoordinator(cfg.Store, refresher)
	coord.OnAuthFailure = cfg.OnAuthFailure

	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.BaseDelay == 0 {
		retry = DefaultRetryPolicy
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  cfg.Store,
		coord:   coord,
		cache:   NewCache(),
		retry:   retry,
	}, nil
}

// Coordinator exposes the refresh coordinator, mainly so a login flow can
// reset an open circuit after storing fresh credentials.
func (c *Client) Coordinator() *auth.Coordinator {
	return c.coord
}

// callOptions select the pipeline behavior for one endpoint call.
type callOptions struct {
	// EnableCache stores a successful payload under the request key and
	// serves fresh hits without transport.
	EnableCache bool
	// TTL is the cache lifetime; ignored unless EnableCache is set.
	TTL time.Duration
	// SkipAuthRefresh marks pre-auth calls (login, refresh): no bearer
	// credential is attached and a 401 is surfaced as-is.
	SkipAuthRefresh bool
	// FallbackEligible lets a network failure serve the last good payload
	// for this key instead of erroring.
	FallbackEligible bool
}

// call runs one request through the full pipeline and returns the
// response payload in caller field convention. Every error it returns is
// an *APIError.
func (c *Client) call(ctx context.Context, method, path string, params map[string]string, body any, opts callOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Normalize(err)
	}

	var wireBody []byte
	if body != nil {
		var err error
		wireBody, err = toWire(body)
		if err != nil {
			return nil, Normalize(fmt.Errorf("failed to encode request body: %w", err))
		}
	}

	key := reqkey.Build(method, path, params, wireBody)

	payload, err := c.cache.Do(ctx, key, opts.TTL, opts.EnableCache, func(prodCtx context.Context) ([]byte, error) {
		return c.produce(prodCtx, method, path, params, wireBody, opts)
	})
	if err == nil {
		return payload, nil
	}

	apiErr := Normalize(err)
	if apiErr.IsNetwork && opts.FallbackEligible {
		if stale, ok := c.cache.Fallback(key); ok {
			log.Warn().Str("path", path).Msg("Network unavailable, serving last known data")
			return stale, nil
		}
	}
	return nil, apiErr
}

// produce performs the transport work for one coalesced call: attach the
// credential, send, and on a 401 refresh the token once and re-send. A
// second 401 surfaces as-is.
func (c *Client) produce(ctx context.Context, method, path string, params map[string]string, wireBody []byte, opts callOptions) ([]byte, error) {
	requestID := uuid.NewString()

	token, err := c.bearerToken(ctx, opts)
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.attempt(ctx, method, path, params, wireBody, token, requestID)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !opts.SkipAuthRefresh {
		if _, ok := c.tokens.RefreshTokenValue(); ok {
			newToken, rerr := c.coord.Refresh(ctx)
			if rerr != nil {
				return nil, rerr
			}
			log.Debug().Str("request_id", requestID).Str("path", path).Msg("Retrying request with refreshed token")
			status, respBody, err = c.attempt(ctx, method, path, params, wireBody, newToken, requestID)
			if err != nil {
				return nil, err
			}
		}
	}

	if status < 200 || status >= 300 {
		return nil, newHTTPError(status, respBody)
	}

	translated, err := fromWire(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return translated, nil
}

// bearerToken returns the access token to attach. An expired token with a
// refresh value available triggers a proactive refresh, shared through
// the coordinator with any concurrent caller in the same position. While
// the breaker is open there is no credential worth sending, so the call
// fails before any transport happens.
// SkipAuthRefresh calls still attach a valid token when one exists, they
// just never trigger a refresh.
func (c *Client) bearerToken(ctx context.Context, opts callOptions) (string, error) {
	token, ok := c.tokens.GetValidToken()
	if ok || opts.SkipAuthRefresh {
		return token, nil
	}
	if c.coord.State() == auth.StateCircuitOpen {
		return "", auth.ErrRefreshExhausted
	}
	if _, ok := c.tokens.RefreshTokenValue(); ok {
		return c.coord.Refresh(ctx)
	}
	return "", nil
}

// attempt sends the request once, retrying only transient transport
// failures per the retry policy. Any HTTP response, whatever its status,
// ends the attempt loop.
func (c *Client) attempt(ctx context.Context, method, path string, params map[string]string, wireBody []byte, token, requestID string) (int, []byte, error) {
	var status int
	var respBody []byte

	err := c.retry.Do(ctx, func() error {
		req, err := c.newRequest(ctx, method, path, params, wireBody, token, requestID)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer closeResponseBody(resp)

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		status = resp.StatusCode
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return status, respBody, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, params map[string]string, body []byte, token, requestID string) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req, nil
}

// closeResponseBody drains up to 1MB before closing so the underlying
// connection can be reused.
func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 1024*1024)
	if err := resp.Body.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close response body")
	}
}
