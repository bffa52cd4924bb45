package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

// TokenRevocationStore blacklists session tokens until their natural expiry.
// A revoked token must never authorize a request again even though its
// signature stays valid; once past its own exp claim the record is logically
// absent whether or not a sweep has physically removed it.
//
// Revoking a token already past its own exp claim is a no-op in every
// backend: nothing can authorize with it, so there is nothing worth storing
// and AlreadyRevoked is reported only for live tokens.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, token string, userID uuid.UUID) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	// SweepExpired is cleanup only; IsRevoked already ignores expired rows.
	SweepExpired(ctx context.Context) (int64, error)
}

// HashToken derives the storage key for a token. Raw tokens are never
// persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenExpiry extracts the token's own exp claim without verifying the
// signature. The claim is only used for retention: a forged exp buys an
// attacker nothing, since the guard verifies the signature separately.
func TokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, apierr.MalformedToken(err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, apierr.MalformedToken(errors.New("missing exp claim"))
	}
	return claims.ExpiresAt.Time, nil
}

type dbRevocationStore struct {
	log  *logger.Logger
	repo repos.RevokedTokenRepo
}

// NewDBRevocationStore builds the Postgres-backed store, used when no Redis
// address is configured. Expired rows are ignored on read and removed by the
// periodic sweep.
func NewDBRevocationStore(baseLog *logger.Logger, repo repos.RevokedTokenRepo) TokenRevocationStore {
	return &dbRevocationStore{
		log:  baseLog.With("service", "DBRevocationStore"),
		repo: repo,
	}
}

func (s *dbRevocationStore) Revoke(ctx context.Context, token string, userID uuid.UUID) error {
	expiresAt, err := TokenExpiry(token)
	if err != nil {
		return err
	}
	if !expiresAt.After(time.Now()) {
		// Past its natural expiry; match the TTL-backed store and skip.
		s.log.Debug("revoke of already-expired token ignored", "user_id", userID.String())
		return nil
	}
	row := &types.RevokedToken{
		TokenHash: HashToken(token),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	inserted, err := s.repo.Insert(ctx, nil, row)
	if err != nil {
		return fmt.Errorf("insert revocation: %w", err)
	}
	if !inserted {
		return apierr.AlreadyRevoked()
	}
	s.log.Debug("token revoked", "user_id", userID.String(), "expires_at", expiresAt)
	return nil
}

func (s *dbRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	row, err := s.repo.GetByHash(ctx, nil, HashToken(token))
	if err != nil {
		return false, fmt.Errorf("lookup revocation: %w", err)
	}
	if row == nil {
		return false, nil
	}
	// A record past its expiry is treated as absent regardless of whether
	// the sweep has run.
	return row.ExpiresAt.After(time.Now()), nil
}

func (s *dbRevocationStore) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep revocations: %w", err)
	}
	if removed > 0 {
		s.log.Debug("swept expired revocations", "removed", removed)
	}
	return removed, nil
}
