package model

import "time"

// expiryLeeway is subtracted from the stored expiry when checking freshness
// so a token that would lapse mid-call is treated as already expired.
const expiryLeeway = 30 * time.Second

// Credential is one channel's OAuth grant for the video hosting platform.
// AccessToken is short-lived; RefreshToken, when present, can mint a new
// access token without user interaction. A credential whose access token has
// expired and that carries no refresh token is unusable until the channel is
// re-authorized.
type Credential struct {
	ChannelID    string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	Scopes       []string
	UpdatedAt    time.Time
}

// Expired reports whether the access token's expiry has passed (with a small
// leeway). A zero expiry means the platform did not report one; such tokens
// are treated as non-expiring.
func (c Credential) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !time.Now().Before(c.Expiry.Add(-expiryLeeway))
}

// Valid reports whether the credential can be used for an API call right now:
// an access token is present and not expired.
func (c Credential) Valid() bool {
	return c.AccessToken != "" && !c.Expired()
}

// ChannelStatus is a read-only diagnostic view of one cached credential.
// It intentionally omits token material.
type ChannelStatus struct {
	ChannelID string
	Valid     bool
	Expired   bool
	Expiry    time.Time
	Scopes    []string
}
