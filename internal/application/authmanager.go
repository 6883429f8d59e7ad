// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// ErrInvalidChannel is returned for an empty or blank channel identifier.
var ErrInvalidChannel = errors.New("channel id must not be empty")

// ErrNotAuthenticated is returned when no usable credential exists for a
// channel; the caller must run the authorization flow before retrying.
var ErrNotAuthenticated = errors.New("channel is not authenticated")

// AuthManager is the single authority for obtaining a ready-to-use
// credential for a channel. It serves from the in-memory cache, falls back
// to the store, transparently refreshes expired tokens, and keeps store and
// cache consistent (store write always precedes cache write).
type AuthManager struct {
	store     driven.CredentialStore
	refresher driven.TokenRefresher
	cache     *CredentialCache
	logger    *slog.Logger

	// mu guards refreshLocks. Each channel gets its own mutex, created on
	// demand, so at most one refresh per channel is in flight while cache
	// hits for other channels proceed untouched.
	mu           sync.Mutex
	refreshLocks map[string]*sync.Mutex
}

// NewAuthManager creates an AuthManager with injected collaborators.
func NewAuthManager(store driven.CredentialStore, refresher driven.TokenRefresher, cache *CredentialCache, logger *slog.Logger) *AuthManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthManager{
		store:        store,
		refresher:    refresher,
		cache:        cache,
		logger:       logger,
		refreshLocks: make(map[string]*sync.Mutex),
	}
}

// Resolve returns a valid, non-expired credential for the channel.
//
// Lookup order: cache, then store (populating the cache on a hit). An
// expired credential with a refresh token is refreshed against the token
// endpoint; the new credential is persisted to the store before the cache
// is updated, and the call fails without mutating either on refresh or
// persist failure. An expired credential without a refresh token means the
// channel must re-authorize.
func (m *AuthManager) Resolve(ctx context.Context, channelID string) (model.Credential, error) {
	if strings.TrimSpace(channelID) == "" {
		return model.Credential{}, ErrInvalidChannel
	}

	cred, ok := m.cache.Get(channelID)
	if !ok {
		stored, err := m.store.Get(ctx, channelID)
		if err != nil {
			return model.Credential{}, fmt.Errorf("resolve %q: %w", channelID, err)
		}
		if stored == nil {
			return model.Credential{}, fmt.Errorf("%w: %q", ErrNotAuthenticated, channelID)
		}

		m.cache.Put(*stored)
		cred = *stored
		m.logger.Info("credential loaded from store", "channel_id", channelID)
	}

	if !cred.Expired() {
		return cred, nil
	}

	return m.refreshAndPersist(ctx, channelID)
}

// refreshAndPersist performs the expiry-check-and-refresh step under the
// channel's lock. The lock covers only this step, not the full resolve
// path, so cache hits for fresh credentials stay concurrent.
func (m *AuthManager) refreshAndPersist(ctx context.Context, channelID string) (model.Credential, error) {
	lock := m.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	// Another resolver may have refreshed while we waited on the lock.
	cred, ok := m.cache.Get(channelID)
	if ok && !cred.Expired() {
		return cred, nil
	}
	if !ok {
		// Evicted is impossible (nothing evicts), but guard anyway.
		stored, err := m.store.Get(ctx, channelID)
		if err != nil {
			return model.Credential{}, fmt.Errorf("resolve %q: %w", channelID, err)
		}
		if stored == nil {
			return model.Credential{}, fmt.Errorf("%w: %q", ErrNotAuthenticated, channelID)
		}
		cred = *stored
	}

	if cred.RefreshToken == "" {
		return model.Credential{}, fmt.Errorf("%w: %q has an expired credential and no refresh token", ErrNotAuthenticated, channelID)
	}

	m.logger.Info("refreshing expired credential", "channel_id", channelID)

	refreshed, err := m.refresher.Refresh(ctx, cred)
	if err != nil {
		m.logger.Error("credential refresh failed", "channel_id", channelID, "error", err)
		return model.Credential{}, fmt.Errorf("refresh %q: %w", channelID, err)
	}

	// Store before cache: the cache must never hold a credential that a
	// subsequent store read would contradict.
	if err := m.store.Put(ctx, refreshed); err != nil {
		m.logger.Error("persisting refreshed credential failed", "channel_id", channelID, "error", err)
		return model.Credential{}, fmt.Errorf("persist refreshed credential for %q: %w", channelID, err)
	}
	m.cache.Put(refreshed)

	m.logger.Info("credential refreshed", "channel_id", channelID, "expiry", refreshed.Expiry)
	return refreshed, nil
}

// Register persists a freshly authorized credential and caches it. Called
// by the authorization callback after a completed code exchange. The cache
// is left unchanged when the store write fails; persistence is the source
// of truth.
func (m *AuthManager) Register(ctx context.Context, cred model.Credential) error {
	if strings.TrimSpace(cred.ChannelID) == "" {
		return ErrInvalidChannel
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return fmt.Errorf("register %q: credential has no token material", cred.ChannelID)
	}

	if err := m.store.Put(ctx, cred); err != nil {
		return fmt.Errorf("register %q: %w", cred.ChannelID, err)
	}
	m.cache.Put(cred)

	m.logger.Info("channel registered", "channel_id", cred.ChannelID, "scopes", cred.Scopes)
	return nil
}

// ReloadAll rehydrates the cache from every store record and returns the
// channel identifiers loaded, sorted. Cache entries for channels no longer
// in the store are left untouched. Idempotent; safe to run on a fixed
// interval.
func (m *AuthManager) ReloadAll(ctx context.Context) ([]string, error) {
	creds, err := m.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload credentials: %w", err)
	}

	ids := make([]string, 0, len(creds))
	for _, cred := range creds {
		m.cache.Put(cred)
		ids = append(ids, cred.ChannelID)
	}
	sort.Strings(ids)

	m.logger.Info("credential cache reloaded", "channels", len(ids))
	return ids, nil
}

// Snapshot returns the diagnostic view of every cached channel.
func (m *AuthManager) Snapshot() []model.ChannelStatus {
	return m.cache.Snapshot()
}

func (m *AuthManager) channelLock(channelID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.refreshLocks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		m.refreshLocks[channelID] = lock
	}
	return lock
}
