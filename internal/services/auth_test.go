package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/requestdata"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type fakeUserRepo struct {
	users []*types.User
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, users []*types.User) ([]*types.User, error) {
	f.users = append(f.users, users...)
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, _ *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, id := range userIDs {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(_ context.Context, _ *gorm.DB, emails []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, email := range emails {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ map[string]interface{}) error {
	return nil
}

type authFixture struct {
	auth      AuthService
	userRepo  *fakeUserRepo
	revokes   TokenRevocationStore
	tokenRepo *fakeRevokedTokenRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	userRepo := &fakeUserRepo{}
	tokenRepo := newFakeRevokedTokenRepo()
	revokes := NewDBRevocationStore(log, tokenRepo)
	auth := NewAuthService(
		nil,
		log,
		userRepo,
		&fakeUserProgressRepo{},
		&fakeUserWalletRepo{},
		revokes,
		testSigningKey,
		time.Hour,
	)
	return &authFixture{auth: auth, userRepo: userRepo, revokes: revokes, tokenRepo: tokenRepo}
}

func (fx *authFixture) seedUser(t *testing.T, email, password string) *types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &types.User{ID: uuid.New(), Email: email, Password: string(hashed)}
	fx.userRepo.users = append(fx.userRepo.users, user)
	return user
}

func TestLoginUser(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.seedUser(t, "ana@example.com", "hunter2hunter2")
	ctx := context.Background()

	token, err := fx.auth.LoginUser(ctx, "Ana@Example.com ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	claims := &JWTClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSigningKey), nil
	}); err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Fatalf("token subject = %s, want %s", claims.Subject, user.ID)
	}

	if _, err := fx.auth.LoginUser(ctx, "ana@example.com", "wrong-password"); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Errorf("wrong password err = %v, want code %s", err, apierr.CodeUnauthorized)
	}
	if _, err := fx.auth.LoginUser(ctx, "nobody@example.com", "hunter2hunter2"); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Errorf("unknown email err = %v, want code %s", err, apierr.CodeUnauthorized)
	}
}

func TestSetContextFromTokenValid(t *testing.T) {
	fx := newAuthFixture(t)
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, userID, exp)

	ctx, err := fx.auth.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("no request data attached to context")
	}
	if rd.UserID != userID {
		t.Errorf("rd.UserID = %s, want %s", rd.UserID, userID)
	}
	if rd.TokenString != token {
		t.Errorf("rd.TokenString does not round-trip the presented token")
	}
	if rd.ExpiresAt != exp.Unix() {
		t.Errorf("rd.ExpiresAt = %d, want %d", rd.ExpiresAt, exp.Unix())
	}
}

func TestSetContextFromTokenRejections(t *testing.T) {
	fx := newAuthFixture(t)
	userID := uuid.New()

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("some-other-key"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"bad_signature", forged},
		{"expired", signedToken(t, userID, time.Now().Add(-time.Minute))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := fx.auth.SetContextFromToken(context.Background(), tc.token)
			if !apierr.IsCode(err, apierr.CodeUnauthorized) {
				t.Fatalf("err = %v, want code %s", err, apierr.CodeUnauthorized)
			}
			if requestdata.GetRequestData(ctx) != nil {
				t.Fatalf("rejected token attached identity to context")
			}
		})
	}
}

// A revoked token must be rejected even when its signature would not verify:
// the blacklist is consulted before any signature trust is established.
func TestRevocationCheckedBeforeSignature(t *testing.T) {
	fx := newAuthFixture(t)
	userID := uuid.New()

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("rotated-old-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if err := fx.revokes.Revoke(context.Background(), foreign, userID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	_, err = fx.auth.SetContextFromToken(context.Background(), foreign)
	if !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeUnauthorized)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t)
	userID := uuid.New()
	token := signedToken(t, userID, time.Now().Add(time.Hour))

	ctx, err := fx.auth.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := fx.auth.LogoutUser(ctx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}

	// The session is gone for the remaining token lifetime.
	if _, err := fx.auth.SetContextFromToken(context.Background(), token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("revoked session err = %v, want code %s", err, apierr.CodeUnauthorized)
	}
	// Logging out the same session again is a distinct condition.
	if err := fx.auth.LogoutUser(ctx); !apierr.IsCode(err, apierr.CodeAlreadyRevoked) {
		t.Fatalf("second logout err = %v, want code %s", err, apierr.CodeAlreadyRevoked)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	fx := newAuthFixture(t)
	if err := fx.auth.LogoutUser(context.Background()); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("err = %v, want code %s", err, apierr.CodeUnauthorized)
	}
}
