package application_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaselko/vidgate/internal/application"
)

func TestCredentialCache_GetMissing(t *testing.T) {
	cache := application.NewCredentialCache()

	_, ok := cache.Get("alpha")
	assert.False(t, ok)
}

func TestCredentialCache_PutOverwrites(t *testing.T) {
	cache := application.NewCredentialCache()

	first := validCredential("alpha")
	cache.Put(first)

	second := first
	second.AccessToken = "ya29.rotated"
	cache.Put(second)

	got, ok := cache.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "ya29.rotated", got.AccessToken)
	assert.Equal(t, 1, cache.Len())
}

func TestCredentialCache_SnapshotReturnsEveryEntry(t *testing.T) {
	cache := application.NewCredentialCache()

	cache.Put(validCredential("charlie"))
	cache.Put(expiredCredential("alpha"))
	cache.Put(validCredential("beta"))

	statuses := cache.Snapshot()
	require.Len(t, statuses, 3)
	assert.Equal(t, "alpha", statuses[0].ChannelID)
	assert.Equal(t, "beta", statuses[1].ChannelID)
	assert.Equal(t, "charlie", statuses[2].ChannelID)

	assert.True(t, statuses[0].Expired)
	assert.False(t, statuses[0].Valid)
	assert.True(t, statuses[1].Valid)
	assert.NotEmpty(t, statuses[1].Scopes)
}

func TestCredentialCache_ConcurrentAccess(t *testing.T) {
	cache := application.NewCredentialCache()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines * 3)

	for range goroutines {
		go func() {
			defer wg.Done()
			cache.Put(validCredential("alpha"))
		}()
		go func() {
			defer wg.Done()
			_, _ = cache.Get("alpha")
		}()
		go func() {
			defer wg.Done()
			_ = cache.Snapshot()
		}()
	}
	wg.Wait()

	got, ok := cache.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.ChannelID)
}
