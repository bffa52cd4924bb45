package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

// WalletLedger owns the coin aggregate. Both mutations are single guarded
// UPDATE statements, so concurrent callers can never drive the balance
// negative or break balance == total_earned - total_spent.
//
// The reason argument is an audit label for logging only; idempotency of
// reward payouts is the coordinator's responsibility.
type WalletLedger interface {
	AddCoins(ctx context.Context, userID uuid.UUID, amount int, reason string) error
	SpendCoins(ctx context.Context, userID uuid.UUID, amount int, reason string) error
	CanAfford(ctx context.Context, userID uuid.UUID, cost int) (bool, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*types.UserWallet, error)
}

type walletLedger struct {
	db         *gorm.DB
	log        *logger.Logger
	walletRepo repos.UserWalletRepo
}

func NewWalletLedger(db *gorm.DB, baseLog *logger.Logger, walletRepo repos.UserWalletRepo) WalletLedger {
	return &walletLedger{
		db:         db,
		log:        baseLog.With("service", "WalletLedger"),
		walletRepo: walletRepo,
	}
}

func (wl *walletLedger) AddCoins(ctx context.Context, userID uuid.UUID, amount int, reason string) error {
	if amount <= 0 {
		return apierr.InvalidAmount(amount)
	}
	touched, err := wl.walletRepo.Credit(ctx, nil, userID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if touched == 0 {
		return apierr.UserNotFound(userID.String())
	}
	wl.log.Debug("coins credited", "user_id", userID.String(), "amount", amount, "reason", reason)
	return nil
}

func (wl *walletLedger) SpendCoins(ctx context.Context, userID uuid.UUID, amount int, reason string) error {
	if amount <= 0 {
		return apierr.InvalidAmount(amount)
	}
	touched, err := wl.walletRepo.Debit(ctx, nil, userID, amount)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	if touched == 0 {
		// Distinguish a missing wallet from a guarded-update miss.
		wallet, getErr := wl.walletRepo.GetByUserID(ctx, nil, userID)
		if getErr != nil {
			return fmt.Errorf("load wallet after failed debit: %w", getErr)
		}
		if wallet == nil {
			return apierr.UserNotFound(userID.String())
		}
		return apierr.InsufficientFunds(wallet.Balance, amount)
	}
	wl.log.Debug("coins spent", "user_id", userID.String(), "amount", amount, "reason", reason)
	return nil
}

func (wl *walletLedger) CanAfford(ctx context.Context, userID uuid.UUID, cost int) (bool, error) {
	wallet, err := wl.walletRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return false, fmt.Errorf("load wallet: %w", err)
	}
	if wallet == nil {
		return false, apierr.UserNotFound(userID.String())
	}
	return wallet.Balance >= cost, nil
}

func (wl *walletLedger) GetWallet(ctx context.Context, userID uuid.UUID) (*types.UserWallet, error) {
	wallet, err := wl.walletRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	if wallet == nil {
		return nil, apierr.UserNotFound(userID.String())
	}
	return wallet, nil
}
