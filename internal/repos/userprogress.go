package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type UserProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.UserProgress) ([]*types.UserProgress, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProgress, error)
	// GetLockedByUserID takes a row lock (SELECT ... FOR UPDATE) so that
	// concurrent experience grants for the same user serialize at the storage
	// layer. Must be called inside a transaction.
	GetLockedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProgress, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (pr *userProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.UserProgress) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(rows) == 0 {
		return []*types.UserProgress{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (pr *userProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var row types.UserProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (pr *userProgressRepo) GetLockedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var row types.UserProgress
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (pr *userProgressRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}
