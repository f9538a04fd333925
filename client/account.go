package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	profileTTL    = 30 * time.Second
	enrollmentTTL = 30 * time.Second
)

// Login authenticates with email and password and stores the resulting
// credential. persist controls whether the credential outlives the
// process. Any previously cached data belongs to the old session and is
// dropped.
func (c *Client) Login(ctx context.Context, email, password string, persist bool) error {
	if email == "" || password == "" {
		return fmt.Errorf("email and password cannot be empty")
	}

	payload, err := c.call(ctx, http.MethodPost, "/auth/login/", nil,
		map[string]string{"email": email, "password": password},
		callOptions{SkipAuthRefresh: true})
	if err != nil {
		return err
	}

	var creds Credentials
	if err := unmarshalLoose(payload, &creds); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	if creds.AccessToken == "" {
		return fmt.Errorf("login response carried no access token")
	}

	expiresAt := time.Now().Add(time.Duration(creds.ExpiresIn) * time.Second)
	if err := c.tokens.SetAuthData(ctx, creds.AccessToken, creds.RefreshToken, expiresAt, persist); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	c.coord.Reset()
	c.cache.Clear()
	log.Info().Msg("Logged in successfully.")
	return nil
}

// Logout revokes the refresh token server-side on a best-effort basis,
// then clears local credentials and cached data regardless of how the
// server call went.
func (c *Client) Logout(ctx context.Context) error {
	if refresh, ok := c.tokens.RefreshTokenValue(); ok {
		_, err := c.call(ctx, http.MethodPost, "/auth/logout/", nil,
			map[string]string{"refreshToken": refresh},
			callOptions{SkipAuthRefresh: true})
		if err != nil {
			log.Warn().Err(err).Msg("Server-side logout failed, clearing local session anyway")
		}
	}

	if err := c.tokens.ClearAuthData(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	c.coord.Reset()
	c.cache.Clear()
	log.Info().Msg("Logged out.")
	return nil
}

// Me returns the authenticated account's profile.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	payload, err := c.call(ctx, http.MethodGet, "/user/me/", nil, nil, callOptions{
		EnableCache: true,
		TTL:         profileTTL,
	})
	if err != nil {
		return nil, err
	}
	var profile UserProfile
	if err := unmarshalLoose(payload, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}
	return &profile, nil
}

// UpdateProfile patches the editable profile fields and returns the
// updated record.
func (c *Client) UpdateProfile(ctx context.Context, input ProfileInput) (*UserProfile, error) {
	payload, err := c.call(ctx, http.MethodPatch, "/user/me/", nil, input, callOptions{})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("/user/me/")

	var profile UserProfile
	if err := unmarshalLoose(payload, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}
	return &profile, nil
}

// Enrollments lists the courses the account has joined.
func (c *Client) Enrollments(ctx context.Context) ([]Enrollment, error) {
	payload, err := c.call(ctx, http.MethodGet, "/user/me/enrollments/", nil, nil, callOptions{
		EnableCache: true,
		TTL:         enrollmentTTL,
	})
	if err != nil {
		return nil, err
	}
	var enrollments []Enrollment
	if err := unmarshalLoose(payload, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to parse enrollments response: %w", err)
	}
	return enrollments, nil
}
