package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

func testCredential(channelID string) model.Credential {
	return model.Credential{
		ChannelID:    channelID,
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
	}
}

func TestChannelRepo_PutAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)
	ctx := context.Background()

	want := testCredential("alpha")
	require.NoError(t, repo.Put(ctx, want))

	got, err := repo.Get(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.ChannelID)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.Equal(t, want.TokenType, got.TokenType)
	assert.True(t, want.Expiry.Equal(got.Expiry))
	assert.Equal(t, want.Scopes, got.Scopes)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestChannelRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)

	got, err := repo.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChannelRepo_PutOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)
	ctx := context.Background()

	first := testCredential("alpha")
	require.NoError(t, repo.Put(ctx, first))

	second := first
	second.AccessToken = "ya29.rotated"
	second.RefreshToken = "1//rotated"
	require.NoError(t, repo.Put(ctx, second))

	got, err := repo.Get(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ya29.rotated", got.AccessToken)
	assert.Equal(t, "1//rotated", got.RefreshToken)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "overwrite must not create a second row")
}

func TestChannelRepo_ListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testCredential("alpha")))
	require.NoError(t, repo.Put(ctx, testCredential("beta")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ids := []string{all[0].ChannelID, all[1].ChannelID}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)
}

func TestChannelRepo_ListAllSkipsCorruptPayload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testCredential("alpha")))
	require.NoError(t, repo.Put(ctx, testCredential("beta")))

	// Corrupt one row directly; ListAll must skip it and load the rest.
	_, err := db.Writer.ExecContext(ctx,
		`INSERT OR REPLACE INTO channel_tokens (channel_id, token) VALUES (?, ?)`,
		"gamma", "{not json",
	)
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ids := []string{all[0].ChannelID, all[1].ChannelID}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)
}

func TestChannelRepo_GetCorruptPayloadIsStoreError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)
	ctx := context.Background()

	_, err := db.Writer.ExecContext(ctx,
		`INSERT INTO channel_tokens (channel_id, token) VALUES (?, ?)`,
		"alpha", "{not json",
	)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "alpha")
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestChannelRepo_PreservesNoRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepo(db, nil)
	ctx := context.Background()

	cred := testCredential("alpha")
	cred.RefreshToken = ""
	require.NoError(t, repo.Put(ctx, cred))

	got, err := repo.Get(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.RefreshToken)
	assert.Equal(t, cred.AccessToken, got.AccessToken)
}
