package googleauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

const uploadScope = "https://www.googleapis.com/auth/youtube.upload"

// newTokenServer returns an httptest server answering the OAuth2 token
// endpoint with the given handler, plus a Client pointed at it.
func newTokenServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClientWithEndpoint(
		"client-id", "client-secret", "http://127.0.0.1/auth/callback",
		[]string{uploadScope},
		srv.URL+"/auth", srv.URL+"/token",
	)
	return srv, client
}

func TestClient_AuthCodeURL(t *testing.T) {
	_, client := newTokenServer(t, nil)

	raw := client.AuthCodeURL("alpha:nonce")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "alpha:nonce", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, uploadScope, q.Get("scope"))
	assert.Equal(t, "force", q.Get("approval_prompt"))
}

func TestClient_Refresh(t *testing.T) {
	_, client := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "1//r1", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"ya29.fresh","token_type":"Bearer","expires_in":3600}`)
	})

	stale := model.Credential{
		ChannelID:    "beta",
		AccessToken:  "ya29.stale",
		RefreshToken: "1//r1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
		Scopes:       []string{uploadScope},
	}

	got, err := client.Refresh(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, "beta", got.ChannelID)
	assert.Equal(t, "ya29.fresh", got.AccessToken)
	assert.Equal(t, "1//r1", got.RefreshToken, "refresh token must be retained when not rotated")
	assert.Equal(t, []string{uploadScope}, got.Scopes)
	assert.True(t, got.Valid())
}

func TestClient_RefreshRotatesRefreshToken(t *testing.T) {
	_, client := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"ya29.fresh","refresh_token":"1//r2","token_type":"Bearer","expires_in":3600}`)
	})

	stale := model.Credential{ChannelID: "beta", AccessToken: "ya29.stale", RefreshToken: "1//r1", Expiry: time.Now().Add(-time.Hour)}

	got, err := client.Refresh(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, "1//r2", got.RefreshToken)
}

func TestClient_RefreshRejected(t *testing.T) {
	_, client := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	stale := model.Credential{ChannelID: "beta", AccessToken: "ya29.stale", RefreshToken: "1//revoked", Expiry: time.Now().Add(-time.Hour)}

	_, err := client.Refresh(context.Background(), stale)
	assert.ErrorIs(t, err, driven.ErrRefreshFailed)
}

func TestClient_Exchange(t *testing.T) {
	_, client := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "code-123", r.Form.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"ya29.new","refresh_token":"1//new","token_type":"Bearer","expires_in":3600}`)
	})

	got, err := client.Exchange(context.Background(), "code-123", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.ChannelID)
	assert.Equal(t, "ya29.new", got.AccessToken)
	assert.Equal(t, "1//new", got.RefreshToken)
	assert.True(t, got.Valid())
}

func TestClient_ExchangeRejected(t *testing.T) {
	_, client := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Exchange(context.Background(), "bad-code", "alpha")
	assert.Error(t, err)
}
