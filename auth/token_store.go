package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// expirySkew treats a token expiring within this window as already expired,
// so requests never go out with a token that dies mid-flight.
const expirySkew = 5 * time.Minute

// TokenStore holds the session credential and mediates every read and write
// of it. Persistence is delegated to the configured CredentialStorer; with
// Persist=false the credential lives only in memory for this session.
type TokenStore struct {
	mu     sync.Mutex
	cred   *Credential
	storer CredentialStorer
	now    func() time.Time
}

// NewTokenStore is the constructor for the token store. storer may be nil
// for purely in-memory use.
func NewTokenStore(storer CredentialStorer) *TokenStore {
	return &TokenStore{storer: storer, now: time.Now}
}

// Load hydrates the store from the persisted credential, if one exists.
func (s *TokenStore) Load(ctx context.Context) error {
	if s.storer == nil {
		return nil
	}
	cred, err := s.storer.GetCredential(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted credential: %w", err)
	}
	if cred == nil {
		return nil
	}
	cred.Persist = true
	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()
	log.Debug().Msg("Loaded persisted credential.")
	return nil
}

// GetValidToken returns the access token when one is present and not yet
// within expirySkew of its expiry. It never returns an expired token.
func (s *TokenStore) GetValidToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validLocked() {
		return "", false
	}
	return s.cred.AccessToken, true
}

// IsTokenValid reports whether a usable access token is currently held.
func (s *TokenStore) IsTokenValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

// RefreshTokenValue returns the refresh token, if one is held. The refresh
// token has no local expiry; the platform decides when to reject it.
func (s *TokenStore) RefreshTokenValue() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.RefreshToken == "" {
		return "", false
	}
	return s.cred.RefreshToken, true
}

func (s *TokenStore) validLocked() bool {
	if s.cred == nil || s.cred.AccessToken == "" || s.cred.ExpiresAt.IsZero() {
		return false
	}
	return s.now().Add(expirySkew).Before(s.cred.ExpiresAt)
}

// SetAuthData replaces the whole credential after a login. With persist=true
// the credential is written through the storer; with persist=false any
// previously persisted credential is removed so nothing outlives the session.
func (s *TokenStore) SetAuthData(ctx context.Context, access, refresh string, expiresAt time.Time, persist bool) error {
	s.mu.Lock()
	s.cred = &Credential{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		Persist:      persist,
	}
	cred := *s.cred
	s.mu.Unlock()

	if s.storer == nil {
		return nil
	}
	if persist {
		if err := s.storer.SaveCredential(ctx, &cred); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
		return nil
	}
	if err := s.storer.DeleteCredential(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted credential: %w", err)
	}
	return nil
}

// UpdateAccessToken stores a refreshed access token, keeping the refresh
// token and the persistence choice unchanged.
func (s *TokenStore) UpdateAccessToken(ctx context.Context, access string, expiresAt time.Time) error {
	return s.update(ctx, access, "", expiresAt)
}

// RotateTokens stores a refreshed access token together with a rotated
// refresh token, keeping the persistence choice unchanged.
func (s *TokenStore) RotateTokens(ctx context.Context, access, refresh string, expiresAt time.Time) error {
	return s.update(ctx, access, refresh, expiresAt)
}

func (s *TokenStore) update(ctx context.Context, access, refresh string, expiresAt time.Time) error {
	s.mu.Lock()
	if s.cred == nil {
		s.mu.Unlock()
		return fmt.Errorf("no credential to update; please login first")
	}
	s.cred.AccessToken = access
	s.cred.ExpiresAt = expiresAt
	if refresh != "" {
		s.cred.RefreshToken = refresh
	}
	cred := *s.cred
	s.mu.Unlock()

	if s.storer == nil || !cred.Persist {
		return nil
	}
	if err := s.storer.SaveCredential(ctx, &cred); err != nil {
		return fmt.Errorf("failed to save refreshed credential: %w", err)
	}
	return nil
}

// ClearAuthData destroys the in-memory credential and any persisted copy.
func (s *TokenStore) ClearAuthData(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()

	if s.storer == nil {
		return nil
	}
	if err := s.storer.DeleteCredential(ctx); err != nil {
		return fmt.Errorf("failed to delete persisted credential: %w", err)
	}
	return nil
}
