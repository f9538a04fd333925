package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/softTechSolutions2001/eduplatform-sub000/auth"
	"github.com/softTechSolutions2001/eduplatform-sub000/client"
	"github.com/softTechSolutions2001/eduplatform-sub000/db"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/clierr"
	"github.com/spf13/cobra"
)

// defaultAPIURL is the hosted platform API root; EDUPLATFORM_API_URL
// overrides it for staging and self-hosted deployments.
const defaultAPIURL = "https://api.eduplatform.example/v1"

const (
	keyringService = "educli"
	keyringUser    = "api-credential"
)

// credentialRepoStorer adapts the database credential row to the
// auth.CredentialStorer interface. The repository is resolved on every
// call so the storer can be constructed before the database is opened.
type credentialRepoStorer struct{}

func (s *credentialRepoStorer) GetCredential(ctx context.Context) (*auth.Credential, error) {
	rec, err := db.NewCredentialRepository(db.GetDB()).Get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	expiresAt, err := time.Parse(time.RFC3339, rec.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored credential expiry: %w", err)
	}
	return &auth.Credential{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		ExpiresAt:    expiresAt,
		Persist:      true,
	}, nil
}

func (s *credentialRepoStorer) SaveCredential(ctx context.Context, cred *auth.Credential) error {
	return db.NewCredentialRepository(db.GetDB()).Upsert(ctx, &db.Credential{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    cred.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *credentialRepoStorer) DeleteCredential(ctx context.Context) error {
	return db.NewCredentialRepository(db.GetDB()).Delete(ctx)
}

// newCredentialStorer picks where credentials live. The login command's
// --store flag wins; otherwise EDUCLI_CREDENTIAL_STORE decides, defaulting
// to the local database.
func newCredentialStorer(preferred string) (auth.CredentialStorer, error) {
	backend := preferred
	if backend == "" {
		backend = os.Getenv("EDUCLI_CREDENTIAL_STORE")
	}
	switch backend {
	case "", "db":
		return &credentialRepoStorer{}, nil
	case "keyring":
		return auth.NewKeyringStore(keyringService, keyringUser)
	default:
		return nil, fmt.Errorf("unknown credential store %q (expected keyring or db)", backend)
	}
}

// apiBaseURL returns the platform API root.
func apiBaseURL() string {
	if u := os.Getenv("EDUPLATFORM_API_URL"); u != "" {
		return u
	}
	return defaultAPIURL
}

// buildClient wires a ready API client for one command invocation: the
// credential storer, a token store loaded from it, and the session-expiry
// notice on the command's error stream.
func buildClient(cmd *cobra.Command, storeBackend string) (*client.Client, error) {
	storer, err := newCredentialStorer(storeBackend)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenStore(storer)
	if err := tokens.Load(cmd.Context()); err != nil {
		log.Warn().Err(err).Msg("Failed to load stored credentials, continuing without a session")
	}

	return client.New(client.Config{
		BaseURL: apiBaseURL(),
		Store:   tokens,
		OnAuthFailure: func() {
			cmd.PrintErrln("Your session has expired. Please run 'educli login' to log in again.")
		},
	})
}

// describeError maps an API client error to a CLI-facing category and a
// message fit for the terminal.
func describeError(err error) *clierr.Error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return clierr.New(clierr.Internal, err.Error(), err)
	}
	switch {
	case apiErr.IsCancelled:
		return clierr.New(clierr.Internal, "Cancelled.", err)
	case apiErr.Kind == client.KindRefreshExhausted:
		return clierr.New(clierr.Auth, "Your session has expired. Please run 'educli login' to log in again.", err)
	case apiErr.IsAuthError():
		return clierr.New(clierr.Auth, "You are not logged in. Please run 'educli login' first.", err)
	case apiErr.IsPermissionError():
		return clierr.New(clierr.Auth, "You do not have permission to do that. An instructor account may be required.", err)
	case apiErr.IsNotFoundError():
		return clierr.New(clierr.NotFound, "Not found: "+apiErr.Message, err)
	case apiErr.IsValidationError():
		return clierr.New(clierr.Validation, "The server rejected the request: "+apiErr.Message, err)
	case apiErr.IsNetwork:
		return clierr.New(clierr.Network, "Network error. Please check your connection and try again.", err)
	default:
		return clierr.New(clierr.Internal, apiErr.Error(), err)
	}
}

// printClientError reports a failed API call on the command's error stream.
func printClientError(cmd *cobra.Command, err error) {
	cerr := describeError(err)
	log.Error().Err(err).Str("category", string(cerr.Type)).Msg("Command failed")
	cmd.PrintErrln("Error:", cerr.Message)
}
