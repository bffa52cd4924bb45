package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type RewardGrantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.RewardGrant) ([]*types.RewardGrant, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RewardGrant, error)
	// ListPartial returns grants whose payout did not fully land; input to
	// offline reconciliation.
	ListPartial(ctx context.Context, tx *gorm.DB, limit int) ([]*types.RewardGrant, error)
}

type rewardGrantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardGrantRepo(db *gorm.DB, baseLog *logger.Logger) RewardGrantRepo {
	return &rewardGrantRepo{db: db, log: baseLog.With("repo", "RewardGrantRepo")}
}

func (gr *rewardGrantRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RewardGrant) ([]*types.RewardGrant, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	if len(rows) == 0 {
		return []*types.RewardGrant{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (gr *rewardGrantRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RewardGrant, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	var results []*types.RewardGrant
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *rewardGrantRepo) ListPartial(ctx context.Context, tx *gorm.DB, limit int) ([]*types.RewardGrant, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	query := transaction.WithContext(ctx).
		Where("status = ?", types.GrantStatusPartial).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var results []*types.RewardGrant
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
