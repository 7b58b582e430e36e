package drive

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"robot-dataset-curator/infrastructure/googleauth"
)

// OAuthConfig holds the configuration for OAuth 2.0 authentication
type OAuthConfig struct {
	CredentialsFile string // Path to OAuth client credentials JSON
	TokenFile       string // Path to store/load token
}

// NewClientWithOAuth creates a new Google Drive client using OAuth 2.0 user
// authentication. The consent request covers Drive and Gmail send so the
// upload and notify commands share one token file.
func NewClientWithOAuth(ctx context.Context, cfg OAuthConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	// If no custom drive service was provided, create one with OAuth
	if c.driveService == nil {
		httpClient, err := googleauth.NewHTTPClient(ctx, googleauth.Config{
			CredentialsFile: cfg.CredentialsFile,
			TokenFile:       cfg.TokenFile,
			Scopes:          []string{drive.DriveScope, gmail.GmailSendScope},
		})
		if err != nil {
			return nil, err
		}

		srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}

// NewClientWithServiceAccount creates a Drive client from service account
// credentials, for headless environments.
func NewClientWithServiceAccount(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		b, err := googleauth.ReadCredentials(credentialsPath)
		if err != nil {
			return nil, err
		}

		config, err := google.JWTConfigFromJSON(b, drive.DriveScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}

		srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}
