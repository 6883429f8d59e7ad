package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*ChannelRepo)(nil)

// ChannelRepo is the SQLite implementation of the CredentialStore port.
// Credentials are serialized to an opaque JSON payload in a single column,
// one row per channel.
type ChannelRepo struct {
	db     *DB
	logger *slog.Logger
}

// NewChannelRepo creates a ChannelRepo backed by the given database.
func NewChannelRepo(db *DB, logger *slog.Logger) *ChannelRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelRepo{db: db, logger: logger}
}

// tokenPayload is the persisted shape of a credential's token material.
// Field names match the OAuth2 wire format so payloads stay readable with
// standard tooling.
type tokenPayload struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Put serializes the credential and inserts or fully replaces the row for
// its channel.
func (r *ChannelRepo) Put(ctx context.Context, cred model.Credential) error {
	payload, err := json.Marshal(tokenPayload{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
		Scopes:       cred.Scopes,
	})
	if err != nil {
		return fmt.Errorf("serialize credential %q: %w: %w", cred.ChannelID, driven.ErrStoreUnavailable, err)
	}

	const query = `INSERT OR REPLACE INTO channel_tokens (channel_id, token, updated_at) VALUES (?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query, cred.ChannelID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put credential %q: %w: %w", cred.ChannelID, driven.ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the credential for the channel, or (nil, nil) when no row
// exists.
func (r *ChannelRepo) Get(ctx context.Context, channelID string) (*model.Credential, error) {
	const query = `SELECT token, updated_at FROM channel_tokens WHERE channel_id = ?`

	var payload, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, channelID).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w: %w", channelID, driven.ErrStoreUnavailable, err)
	}

	cred, err := decodeCredential(channelID, payload, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("decode credential %q: %w: %w", channelID, driven.ErrStoreUnavailable, err)
	}
	return &cred, nil
}

// ListAll returns every stored credential. Rows whose payload cannot be
// deserialized are logged and skipped so one corrupt record does not block
// a full cache rehydration.
func (r *ChannelRepo) ListAll(ctx context.Context) ([]model.Credential, error) {
	const query = `SELECT channel_id, token, updated_at FROM channel_tokens`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w: %w", driven.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		var channelID, payload, updatedAt string
		if err := rows.Scan(&channelID, &payload, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan credential row: %w: %w", driven.ErrStoreUnavailable, err)
		}

		cred, err := decodeCredential(channelID, payload, updatedAt)
		if err != nil {
			r.logger.Warn("skipping undecodable credential record", "channel_id", channelID, "error", err)
			continue
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w: %w", driven.ErrStoreUnavailable, err)
	}

	return creds, nil
}

func decodeCredential(channelID, payload, updatedAt string) (model.Credential, error) {
	var tok tokenPayload
	if err := json.Unmarshal([]byte(payload), &tok); err != nil {
		return model.Credential{}, fmt.Errorf("unmarshal token payload: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return model.Credential{}, errors.New("token payload has no token material")
	}

	cred := model.Credential{
		ChannelID:    channelID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       tok.Scopes,
	}

	ts, err := parseTime(updatedAt)
	if err != nil {
		return model.Credential{}, fmt.Errorf("parse updated_at: %w", err)
	}
	cred.UpdatedAt = ts

	return cred, nil
}
