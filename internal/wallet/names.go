package wallet

import (
	"context" // Deadlines
	"time"    // Cache TTL

	"campus_wallet/internal/domain" // Importing domain models
	"campus_wallet/internal/utils"  // Cache helpers

	"github.com/redis/go-redis/v9" // Redis client
)

// NameResolver maps a profile id to its display name
type NameResolver interface {
	Name(ctx context.Context, profileID string) (string, error)
}

// ProfileSource reads single profiles
type ProfileSource interface {
	Profile(ctx context.Context, id string) (*domain.Profile, error)
}

// CachedNames resolves display names through Redis, falling back to the gateway
type CachedNames struct {
	profiles ProfileSource
	rdb      *redis.Client // Nil disables caching
	ttl      time.Duration
}

// NewCachedNames creates a resolver; a nil rdb reads straight from profiles
func NewCachedNames(profiles ProfileSource, rdb *redis.Client, ttl time.Duration) *CachedNames {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedNames{profiles: profiles, rdb: rdb, ttl: ttl}
}

// Name returns the username of profileID
func (n *CachedNames) Name(ctx context.Context, profileID string) (string, error) {
	key := utils.ProfileNameKey(profileID) // Cache key for the display name
	var name string
	if found, err := utils.GetCache(ctx, n.rdb, key, &name); err == nil && found {
		return name, nil // Served from cache
	}
	p, err := n.profiles.Profile(ctx, profileID)
	if err != nil {
		return "", err
	}
	_ = utils.SetCache(ctx, n.rdb, key, p.Username, n.ttl) // Cache miss, store for next time
	return p.Username, nil
}
