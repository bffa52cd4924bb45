package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

const testSigningKey = "test-signing-key"

func signedToken(t *testing.T, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func tokenWithoutExp(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: userID.String()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type fakeRevokedTokenRepo struct {
	mu   sync.Mutex
	rows map[string]*types.RevokedToken
}

func newFakeRevokedTokenRepo() *fakeRevokedTokenRepo {
	return &fakeRevokedTokenRepo{rows: map[string]*types.RevokedToken{}}
}

func (f *fakeRevokedTokenRepo) Insert(_ context.Context, _ *gorm.DB, row *types.RevokedToken) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[row.TokenHash]; ok {
		return false, nil
	}
	f.rows[row.TokenHash] = row
	return true, nil
}

func (f *fakeRevokedTokenRepo) GetByHash(_ context.Context, _ *gorm.DB, tokenHash string) (*types.RevokedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[tokenHash], nil
}

func (f *fakeRevokedTokenRepo) DeleteExpired(_ context.Context, _ *gorm.DB, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for hash, row := range f.rows {
		if !row.ExpiresAt.After(now) {
			delete(f.rows, hash)
			removed++
		}
	}
	return removed, nil
}

func newRevocationFixture(t *testing.T) (TokenRevocationStore, *fakeRevokedTokenRepo) {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	repo := newFakeRevokedTokenRepo()
	return NewDBRevocationStore(log, repo), repo
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, uuid.New(), exp)

	got, err := TokenExpiry(token)
	if err != nil {
		t.Fatalf("TokenExpiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("TokenExpiry = %v, want %v", got, exp)
	}
}

func TestTokenExpiryMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"missing_exp", tokenWithoutExp(t, uuid.New())},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := TokenExpiry(tc.token); !apierr.IsCode(err, apierr.CodeMalformedToken) {
				t.Fatalf("err = %v, want code %s", err, apierr.CodeMalformedToken)
			}
		})
	}
}

func TestHashTokenStableAndOpaque(t *testing.T) {
	token := signedToken(t, uuid.New(), time.Now().Add(time.Hour))
	first := HashToken(token)
	if first != HashToken(token) {
		t.Fatalf("HashToken is not deterministic")
	}
	if len(first) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(first))
	}
	if first == token {
		t.Fatalf("hash must not be the raw token")
	}
}

func TestRevokeThenIsRevoked(t *testing.T) {
	store, repo := newRevocationFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	token := signedToken(t, userID, time.Now().Add(time.Hour))

	if revoked, err := store.IsRevoked(ctx, token); err != nil || revoked {
		t.Fatalf("fresh token reported revoked=%v err=%v", revoked, err)
	}
	if err := store.Revoke(ctx, token, userID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, err := store.IsRevoked(ctx, token); err != nil || !revoked {
		t.Fatalf("revoked token reported revoked=%v err=%v", revoked, err)
	}

	// Only the hash is stored.
	for hash := range repo.rows {
		if hash == token {
			t.Fatalf("raw token persisted as storage key")
		}
	}
}

func TestRevokeTwiceAlreadyRevoked(t *testing.T) {
	store, _ := newRevocationFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	token := signedToken(t, userID, time.Now().Add(time.Hour))

	if err := store.Revoke(ctx, token, userID); err != nil {
		t.Fatalf("first Revoke: %v", err)
	}
	if err := store.Revoke(ctx, token, userID); !apierr.IsCode(err, apierr.CodeAlreadyRevoked) {
		t.Fatalf("second Revoke err = %v, want code %s", err, apierr.CodeAlreadyRevoked)
	}
}

func TestRevokeMalformedToken(t *testing.T) {
	store, repo := newRevocationFixture(t)
	if err := store.Revoke(context.Background(), "not-a-jwt", uuid.New()); !apierr.IsCode(err, apierr.CodeMalformedToken) {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeMalformedToken)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("malformed token left %d rows behind", len(repo.rows))
	}
}

// Revoking a token past its own exp claim is a no-op in both backends, so a
// repeat revoke of an expired token never surfaces AlreadyRevoked either.
func TestRevokeExpiredTokenNoOp(t *testing.T) {
	store, repo := newRevocationFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	token := signedToken(t, userID, time.Now().Add(-time.Minute))

	if err := store.Revoke(ctx, token, userID); err != nil {
		t.Fatalf("first Revoke of expired token: %v", err)
	}
	if err := store.Revoke(ctx, token, userID); err != nil {
		t.Fatalf("second Revoke of expired token: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("expired token stored %d rows, want 0", len(repo.rows))
	}
}

func TestIsRevokedIgnoresExpiredRows(t *testing.T) {
	store, repo := newRevocationFixture(t)
	ctx := context.Background()
	token := signedToken(t, uuid.New(), time.Now().Add(time.Hour))

	// Seed a record that has already passed its expiry, as if the token was
	// revoked long ago and the sweep has not run yet.
	repo.rows[HashToken(token)] = &types.RevokedToken{
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if revoked, err := store.IsRevoked(ctx, token); err != nil || revoked {
		t.Fatalf("expired record reported revoked=%v err=%v, want false", revoked, err)
	}
}

func TestSweepExpiredRemovesOnlyExpired(t *testing.T) {
	store, repo := newRevocationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	live := signedToken(t, userID, time.Now().Add(time.Hour))
	if err := store.Revoke(ctx, live, userID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	deadHash := HashToken("dead-token")
	repo.rows[deadHash] = &types.RevokedToken{
		TokenHash: deadHash,
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	removed, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := repo.rows[HashToken(live)]; !ok {
		t.Fatalf("sweep removed a live revocation")
	}
	if revoked, _ := store.IsRevoked(ctx, live); !revoked {
		t.Fatalf("live revocation lost after sweep")
	}
}
