package auth

import (
	"context"
	"time"

	"eventbook/internal/shared/constants"
	"eventbook/pkg/cache"
)

// RevocationStore remembers logged-out access tokens by jti until they would
// have expired anyway. It satisfies middleware.RevocationChecker.
type RevocationStore struct {
	cache cache.Service
}

func NewRevocationStore(c cache.Service) *RevocationStore {
	return &RevocationStore{cache: c}
}

// Revoke marks jti revoked for ttl. A non-positive ttl is a no-op: the token
// is already expired.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, constants.BuildRevokedTokenKey(jti), true, ttl)
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.cache.Exists(ctx, constants.BuildRevokedTokenKey(jti))
}
