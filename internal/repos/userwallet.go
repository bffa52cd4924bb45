package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type UserWalletRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.UserWallet) ([]*types.UserWallet, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserWallet, error)
	// Credit adds amount to balance and total_earned in one statement.
	// Returns the number of rows touched (0 means no wallet exists).
	Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int) (int64, error)
	// Debit subtracts amount from balance and adds it to total_spent, guarded
	// by balance >= amount in the same statement. Returns rows touched:
	// 0 with an existing wallet means insufficient funds.
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int) (int64, error)
}

type userWalletRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserWalletRepo(db *gorm.DB, baseLog *logger.Logger) UserWalletRepo {
	return &userWalletRepo{db: db, log: baseLog.With("repo", "UserWalletRepo")}
}

func (wr *userWalletRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.UserWallet) ([]*types.UserWallet, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	if len(rows) == 0 {
		return []*types.UserWallet{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (wr *userWalletRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserWallet, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var row types.UserWallet
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

func (wr *userWalletRepo) Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.UserWallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		})
	return res.RowsAffected, res.Error
}

func (wr *userWalletRepo) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.UserWallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
		})
	return res.RowsAffected, res.Error
}
