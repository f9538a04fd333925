package auth

import (
	"context"
	"time"
)

// Credential is the access/refresh token pair the client authenticates with.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Persist      bool
}

// CredentialStorer defines the contract for any component that can persist a credential across restarts.
type CredentialStorer interface {
	GetCredential(ctx context.Context) (*Credential, error)
	SaveCredential(ctx context.Context, cred *Credential) error
	DeleteCredential(ctx context.Context) error
}

// TokenRefresher defines the contract for any component that can exchange a refresh token for a new access token.
type TokenRefresher interface {
	PerformTokenRefresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, expiresIn int64, err error)
}
