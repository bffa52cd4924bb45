package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

// UnlockRegistry owns the per-user unlocked-reward sets. Unlock is idempotent:
// repeated calls for the same pair succeed, but only the first reports fresh.
type UnlockRegistry interface {
	HasUnlocked(ctx context.Context, userID, rewardID uuid.UUID) (bool, error)
	Unlock(ctx context.Context, userID, rewardID uuid.UUID) (fresh bool, err error)
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]*types.UserUnlock, error)
	CountByKind(ctx context.Context, userID uuid.UUID, kind types.RewardKind) (int64, error)
}

type unlockRegistry struct {
	log        *logger.Logger
	unlockRepo repos.UserUnlockRepo
}

func NewUnlockRegistry(baseLog *logger.Logger, unlockRepo repos.UserUnlockRepo) UnlockRegistry {
	return &unlockRegistry{
		log:        baseLog.With("service", "UnlockRegistry"),
		unlockRepo: unlockRepo,
	}
}

func (ur *unlockRegistry) HasUnlocked(ctx context.Context, userID, rewardID uuid.UUID) (bool, error) {
	return ur.unlockRepo.Exists(ctx, nil, userID, rewardID)
}

func (ur *unlockRegistry) Unlock(ctx context.Context, userID, rewardID uuid.UUID) (bool, error) {
	fresh, err := ur.unlockRepo.Insert(ctx, nil, userID, rewardID)
	if err != nil {
		return false, fmt.Errorf("insert unlock: %w", err)
	}
	if fresh {
		ur.log.Debug("fresh unlock", "user_id", userID.String(), "reward_id", rewardID.String())
	}
	return fresh, nil
}

func (ur *unlockRegistry) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]*types.UserUnlock, error) {
	return ur.unlockRepo.ListByUserID(ctx, nil, userID)
}

func (ur *unlockRegistry) CountByKind(ctx context.Context, userID uuid.UUID, kind types.RewardKind) (int64, error) {
	return ur.unlockRepo.CountByUserAndKind(ctx, nil, userID, kind)
}
