package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type RewardDefinitionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.RewardDefinition) ([]*types.RewardDefinition, error)
	GetByID(ctx context.Context, tx *gorm.DB, rewardID uuid.UUID) (*types.RewardDefinition, error)
	List(ctx context.Context, tx *gorm.DB, kind types.RewardKind, activeOnly bool) ([]*types.RewardDefinition, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, rewardID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, rewardID uuid.UUID) error
}

type rewardDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) RewardDefinitionRepo {
	return &rewardDefinitionRepo{db: db, log: baseLog.With("repo", "RewardDefinitionRepo")}
}

func (rr *rewardDefinitionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RewardDefinition) ([]*types.RewardDefinition, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(rows) == 0 {
		return []*types.RewardDefinition{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (rr *rewardDefinitionRepo) GetByID(ctx context.Context, tx *gorm.DB, rewardID uuid.UUID) (*types.RewardDefinition, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var row types.RewardDefinition
	err := transaction.WithContext(ctx).
		Where("id = ?", rewardID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (rr *rewardDefinitionRepo) List(ctx context.Context, tx *gorm.DB, kind types.RewardKind, activeOnly bool) ([]*types.RewardDefinition, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	query := transaction.WithContext(ctx).Model(&types.RewardDefinition{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var results []*types.RewardDefinition
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *rewardDefinitionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, rewardID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.RewardDefinition{}).
		Where("id = ?", rewardID).
		Updates(fields).Error
}

func (rr *rewardDefinitionRepo) Delete(ctx context.Context, tx *gorm.DB, rewardID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", rewardID).
		Delete(&types.RewardDefinition{}).Error
}
