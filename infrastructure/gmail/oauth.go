package gmail

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"robot-dataset-curator/domain/notification"
	"robot-dataset-curator/infrastructure/googleauth"
)

// OAuthConfig holds the configuration for OAuth 2.0 authentication
type OAuthConfig struct {
	CredentialsFile string // Path to OAuth client credentials JSON
	TokenFile       string // Path to store/load token
}

// NewClientWithOAuth creates a Gmail client using OAuth 2.0 user
// authentication. Scopes match the Drive client's so both share one token.
func NewClientWithOAuth(ctx context.Context, cfg OAuthConfig, from notification.Recipient, opts ...ClientOption) (*Client, error) {
	c := NewClient(from, opts...)

	if c.gmailService == nil {
		httpClient, err := googleauth.NewHTTPClient(ctx, googleauth.Config{
			CredentialsFile: cfg.CredentialsFile,
			TokenFile:       cfg.TokenFile,
			Scopes:          []string{drive.DriveScope, gmail.GmailSendScope},
		})
		if err != nil {
			return nil, err
		}

		srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create gmail service: %w", err)
		}
		c.gmailService = &GoogleGmailService{service: srv}
	}

	return c, nil
}
