package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type RevokedTokenRepo interface {
	// Insert records the revocation. inserted is false when the hash is
	// already present (conflict no-op on the primary key).
	Insert(ctx context.Context, tx *gorm.DB, row *types.RevokedToken) (inserted bool, err error)
	GetByHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.RevokedToken, error)
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type revokedTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevokedTokenRepo(db *gorm.DB, baseLog *logger.Logger) RevokedTokenRepo {
	return &revokedTokenRepo{db: db, log: baseLog.With("repo", "RevokedTokenRepo")}
}

func (rr *revokedTokenRepo) Insert(ctx context.Context, tx *gorm.DB, row *types.RevokedToken) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (rr *revokedTokenRepo) GetByHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.RevokedToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var row types.RevokedToken
	err := transaction.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (rr *revokedTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	res := transaction.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&types.RevokedToken{})
	return res.RowsAffected, res.Error
}
