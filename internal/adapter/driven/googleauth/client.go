// Package googleauth implements the TokenRefresher port and the
// authorization-code flow against Google's OAuth2 endpoints using
// golang.org/x/oauth2.
package googleauth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenRefresher = (*Client)(nil)

// Client wraps an oauth2.Config for the two flows the gateway needs: the
// refresh-token exchange and the browser authorization-code exchange.
type Client struct {
	conf    *oauth2.Config
	timeout time.Duration
}

// NewClient creates a Client against Google's OAuth2 endpoints. timeout
// bounds each token-endpoint round trip; zero means no explicit bound.
func NewClient(clientID, clientSecret, redirectURL string, scopes []string, timeout time.Duration) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
		},
		timeout: timeout,
	}
}

// NewClientWithEndpoint creates a Client against a custom endpoint. Intended
// for tests, allowing injection of an httptest token server.
func NewClientWithEndpoint(clientID, clientSecret, redirectURL string, scopes []string, authURL, tokenURL string) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
			RedirectURL:  redirectURL,
			Scopes:       scopes,
		},
	}
}

// AuthCodeURL returns the consent-page URL for the authorization-code flow.
// Offline access is requested so the resulting grant carries a refresh
// token; ApprovalForce makes Google reissue the refresh token on
// re-authorization instead of omitting it.
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange completes the authorization-code flow and returns the resulting
// credential bound to the given channel.
func (c *Client) Exchange(ctx context.Context, code, channelID string) (model.Credential, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return model.Credential{}, fmt.Errorf("authorization code exchange for %q: %w", channelID, err)
	}

	return credentialFromToken(channelID, tok, c.conf.Scopes), nil
}

// Refresh exchanges the credential's refresh token for a new access token.
// The returned credential keeps the channel binding and scopes; when the
// provider does not rotate the refresh token the previous one is retained.
func (c *Client) Refresh(ctx context.Context, cred model.Credential) (model.Credential, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	// Force the token source to refresh by presenting the token as expired.
	stale := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       time.Now().Add(-time.Minute),
	}

	tok, err := c.conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return model.Credential{}, fmt.Errorf("%w: %w", driven.ErrRefreshFailed, err)
	}

	refreshed := credentialFromToken(cred.ChannelID, tok, cred.Scopes)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	return refreshed, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func credentialFromToken(channelID string, tok *oauth2.Token, scopes []string) model.Credential {
	return model.Credential{
		ChannelID:    channelID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}
}
