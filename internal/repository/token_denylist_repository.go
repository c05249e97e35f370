package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenDenylistRepository remembers revoked token IDs until the token would have expired
// anyway.
type TokenDenylistRepository struct {
	client *redis.Client
}

// NewTokenDenylistRepository constructs the repository. With a nil client revocation is
// unavailable and every token is treated as live.
func NewTokenDenylistRepository(client *redis.Client) *TokenDenylistRepository {
	return &TokenDenylistRepository{client: client}
}

// Revoke marks jti as revoked for ttl.
func (r *TokenDenylistRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r.client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (r *TokenDenylistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.client == nil || jti == "" {
		return false, nil
	}
	err := r.client.Get(ctx, revokedTokenPrefix+jti).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}
