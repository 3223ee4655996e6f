package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "auth:revoked:"

// TokenBlacklist records revoked token ids until their natural expiry.
// Logout revokes the presented token; the auth middleware rejects any token
// whose jti is still on the list.
type TokenBlacklist struct {
	rdb *redis.Client
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Revoke blacklists the token id for ttl. A non-positive ttl means the token
// has already expired and there is nothing to do.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.rdb.Set(ctx, blacklistKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoking token %s: %w", tokenID, err)
	}
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("checking token %s: %w", tokenID, err)
	}
	return n > 0, nil
}
