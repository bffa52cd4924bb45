package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/requestdata"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

// AuthService issues and validates session tokens and owns the request
// authorization sequence: extract, revocation check, signature verification.
// Revocation is checked before the signature is trusted so a revoked but
// still-signature-valid token is rejected during its remaining lifetime.
type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	progressRepo repos.UserProgressRepo
	walletRepo   repos.UserWalletRepo
	revocations  TokenRevocationStore
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	progressRepo repos.UserProgressRepo,
	walletRepo repos.UserWalletRepo,
	revocations TokenRevocationStore,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		userRepo:     userRepo,
		progressRepo: progressRepo,
		walletRepo:   walletRepo,
		revocations:  revocations,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

// RegisterUser creates the user together with its progress and wallet
// aggregates in one transaction: every user starts at level 1 with zero
// experience and an empty wallet.
func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if !strings.Contains(user.Email, "@") {
		return apierr.New(400, apierr.CodeValidation, errors.New("invalid email"))
	}
	if len(user.Password) < 8 {
		return apierr.New(400, apierr.CodeValidation, errors.New("password must be at least 8 characters"))
	}

	existing, err := as.userRepo.GetByEmails(ctx, nil, []string{user.Email})
	if err != nil {
		return fmt.Errorf("check existing email: %w", err)
	}
	if len(existing) > 0 {
		return apierr.New(409, apierr.CodeValidation, errors.New("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		progress := &types.UserProgress{
			ID:         uuid.New(),
			UserID:     user.ID,
			Level:      1,
			Experience: 0,
		}
		if _, err := as.progressRepo.Create(ctx, tx, []*types.UserProgress{progress}); err != nil {
			return fmt.Errorf("create progress: %w", err)
		}
		wallet := &types.UserWallet{
			ID:     uuid.New(),
			UserID: user.ID,
		}
		if _, err := as.walletRepo.Create(ctx, tx, []*types.UserWallet{wallet}); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", fmt.Errorf("retrieve user by email: %w", err)
	}
	if len(users) == 0 {
		return "", apierr.Unauthorized(errors.New("invalid credentials"))
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apierr.Unauthorized(errors.New("invalid credentials"))
	}
	return as.generateAccessToken(user)
}

// LogoutUser blacklists the current session token until its natural expiry.
// Revoking the same token twice surfaces AlreadyRevoked.
func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized(errors.New("no session token in context"))
	}
	return as.revocations.Revoke(ctx, rd.TokenString, rd.UserID)
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken runs the per-request authorization sequence and, on
// success, attaches the decoded identity to the context. On any failure the
// context is returned unchanged: no partial identity is ever exposed.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized(errors.New("missing token"))
	}

	// Revocation first: a blacklisted token is rejected before its signature
	// is ever trusted for authorization.
	revoked, err := as.revocations.IsRevoked(ctx, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return ctx, apierr.Unauthorized(errors.New("token revoked"))
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized(errors.New("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid subject claim: %w", err))
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	if claims.ExpiresAt != nil {
		rd.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
