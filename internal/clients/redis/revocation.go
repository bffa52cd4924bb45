package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/services"
)

const revocationKeyPrefix = "revoked:"

type revocationStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRevocationStore builds the Redis-backed revocation store. Entries are
// written with SETNX and a TTL equal to the token's remaining lifetime, so
// Redis itself enforces the never-retained-past-expiry invariant and the
// sweep has nothing to do.
func NewRevocationStore(log *logger.Logger) (services.TokenRevocationStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &revocationStore{
		log: log.With("service", "RedisRevocationStore"),
		rdb: rdb,
	}, nil
}

func (s *revocationStore) Revoke(ctx context.Context, token string, userID uuid.UUID) error {
	expiresAt, err := services.TokenExpiry(token)
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its natural expiry; nothing can authorize with it and
		// there is nothing worth storing.
		s.log.Debug("revoke of already-expired token ignored", "user_id", userID.String())
		return nil
	}
	key := revocationKeyPrefix + services.HashToken(token)
	set, err := s.rdb.SetNX(ctx, key, userID.String(), ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !set {
		return apierr.AlreadyRevoked()
	}
	s.log.Debug("token revoked", "user_id", userID.String(), "ttl", ttl)
	return nil
}

func (s *revocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := revocationKeyPrefix + services.HashToken(token)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *revocationStore) SweepExpired(ctx context.Context) (int64, error) {
	// TTL-based expiry makes the sweep a no-op here.
	return 0, nil
}

func (s *revocationStore) Close() error {
	return s.rdb.Close()
}
