package policy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DirectoryCache is a read-through cache over a UserDirectory. Role and
// admin-flag lookups hit Redis first; misses and cache failures fall
// through to the wrapped directory, whose errors still propagate so the
// checker denies. Entries carry a short TTL to bound staleness.
type DirectoryCache struct {
	inner  UserDirectory
	client *redis.Client
	ttl    time.Duration
}

// NewDirectoryCache wraps a user directory with Redis caching.
func NewDirectoryCache(inner UserDirectory, client *redis.Client, ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{inner: inner, client: client, ttl: ttl}
}

type cachedDirectoryEntry struct {
	SiteAdmin  bool        `json:"site_admin"`
	StoreRoles []StoreRole `json:"store_roles"`
}

// IsSiteAdmin implements UserDirectory.
func (c *DirectoryCache) IsSiteAdmin(ctx context.Context, userID string) (bool, error) {
	if entry, ok := c.lookup(ctx, userID); ok {
		return entry.SiteAdmin, nil
	}
	admin, err := c.inner.IsSiteAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	c.populate(ctx, userID, admin, nil, false)
	return admin, nil
}

// StoreRoles implements UserDirectory.
func (c *DirectoryCache) StoreRoles(ctx context.Context, userID string) ([]StoreRole, error) {
	if entry, ok := c.lookup(ctx, userID); ok && entry.StoreRoles != nil {
		return entry.StoreRoles, nil
	}
	roles, err := c.inner.StoreRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	admin, ok := c.cachedAdmin(ctx, userID)
	if !ok {
		if admin, err = c.inner.IsSiteAdmin(ctx, userID); err != nil {
			// Cache only the roles half on a flag lookup failure.
			return roles, nil
		}
	}
	c.populate(ctx, userID, admin, roles, true)
	return roles, nil
}

// Invalidate drops the cached entry for a user, typically after a role
// assignment change.
func (c *DirectoryCache) Invalidate(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, directoryKey(userID)).Err()
}

func (c *DirectoryCache) lookup(ctx context.Context, userID string) (cachedDirectoryEntry, bool) {
	var entry cachedDirectoryEntry
	if c.client == nil {
		return entry, false
	}
	raw, err := c.client.Get(ctx, directoryKey(userID)).Bytes()
	if err != nil {
		return entry, false
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, false
	}
	return entry, true
}

func (c *DirectoryCache) cachedAdmin(ctx context.Context, userID string) (bool, bool) {
	entry, ok := c.lookup(ctx, userID)
	return entry.SiteAdmin, ok
}

func (c *DirectoryCache) populate(ctx context.Context, userID string, admin bool, roles []StoreRole, withRoles bool) {
	if c.client == nil {
		return
	}
	entry := cachedDirectoryEntry{SiteAdmin: admin}
	if withRoles {
		if roles == nil {
			roles = []StoreRole{}
		}
		entry.StoreRoles = roles
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, directoryKey(userID), raw, c.ttl).Err()
}

func directoryKey(userID string) string {
	return "authz:user:" + userID
}
