package application

import (
	"sort"
	"sync"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

// CredentialCache is the process-wide in-memory mapping from channel
// identifier to the last-known-good credential. Writes are last-writer-wins;
// the cache performs no I/O.
type CredentialCache struct {
	mu      sync.RWMutex
	entries map[string]model.Credential
}

// NewCredentialCache creates an empty cache.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{entries: make(map[string]model.Credential)}
}

// Get returns the cached credential for the channel, if any.
func (c *CredentialCache) Get(channelID string) (model.Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cred, ok := c.entries[channelID]
	return cred, ok
}

// Put stores the credential under its channel, overwriting any existing
// entry.
func (c *CredentialCache) Put(cred model.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cred.ChannelID] = cred
}

// Len returns the number of cached channels.
func (c *CredentialCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a diagnostic view of every cached channel, sorted by
// channel identifier. It never triggers a refresh or any I/O.
func (c *CredentialCache) Snapshot() []model.ChannelStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	statuses := make([]model.ChannelStatus, 0, len(c.entries))
	for id, cred := range c.entries {
		scopes := make([]string, len(cred.Scopes))
		copy(scopes, cred.Scopes)

		statuses = append(statuses, model.ChannelStatus{
			ChannelID: id,
			Valid:     cred.Valid(),
			Expired:   cred.Expired(),
			Expiry:    cred.Expiry,
			Scopes:    scopes,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ChannelID < statuses[j].ChannelID
	})

	return statuses
}
