package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type UserUnlockRepo interface {
	// Insert attempts to record the (user, reward) pair. The insert conflicts
	// silently against the composite unique index; fresh is true only for the
	// caller whose row actually landed. This is the storage-level guarantee
	// that at most one caller ever wins the pair.
	Insert(ctx context.Context, tx *gorm.DB, userID, rewardID uuid.UUID) (fresh bool, err error)
	Exists(ctx context.Context, tx *gorm.DB, userID, rewardID uuid.UUID) (bool, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserUnlock, error)
	CountByUserAndKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.RewardKind) (int64, error)
}

type userUnlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserUnlockRepo(db *gorm.DB, baseLog *logger.Logger) UserUnlockRepo {
	return &userUnlockRepo{db: db, log: baseLog.With("repo", "UserUnlockRepo")}
}

func (ur *userUnlockRepo) Insert(ctx context.Context, tx *gorm.DB, userID, rewardID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	row := &types.UserUnlock{
		ID:         uuid.New(),
		UserID:     userID,
		RewardID:   rewardID,
		UnlockedAt: time.Now().UTC(),
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "reward_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (ur *userUnlockRepo) Exists(ctx context.Context, tx *gorm.DB, userID, rewardID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.UserUnlock{}).
		Where("user_id = ? AND reward_id = ?", userID, rewardID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userUnlockRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserUnlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.UserUnlock
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userUnlockRepo) CountByUserAndKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.RewardKind) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.UserUnlock{}).
		Joins("JOIN reward_definition ON reward_definition.id = user_unlock.reward_id").
		Where("user_unlock.user_id = ? AND reward_definition.kind = ?", userID, kind).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
