package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type Payout struct {
	Coins      int `json:"coins"`
	Experience int `json:"experience"`
}

// Badge payouts follow the fixed rarity schedule. Achievements carry their
// own explicit coin/experience amounts on the definition instead.
var badgePayouts = map[types.Rarity]Payout{
	types.RarityCommon:    {Coins: 10, Experience: 20},
	types.RarityRare:      {Coins: 25, Experience: 50},
	types.RarityEpic:      {Coins: 50, Experience: 100},
	types.RarityLegendary: {Coins: 100, Experience: 200},
	types.RarityUnique:    {Coins: 250, Experience: 500},
}

type GrantResult struct {
	Granted           bool `json:"granted"`
	CoinsAwarded      int  `json:"coins_awarded"`
	ExperienceAwarded int  `json:"experience_awarded"`
	LeveledUp         bool `json:"leveled_up"`
	NewLevel          int  `json:"new_level,omitempty"`
}

type GrantedReward struct {
	RewardID   uuid.UUID        `json:"reward_id"`
	Name       string           `json:"name"`
	Kind       types.RewardKind `json:"kind"`
	Coins      int              `json:"coins"`
	Experience int              `json:"experience"`
}

type CheckResult struct {
	Granted         []GrantedReward `json:"granted"`
	TotalCoins      int             `json:"total_coins"`
	TotalExperience int             `json:"total_experience"`
}

// RewardCoordinator orchestrates the three ledgers to grant a reward bundle
// as one logical operation. There is no cross-aggregate transaction: the
// unlock insert commits first and is the sole idempotency guard. A payout
// failure after a committed unlock is surfaced as a partial failure and the
// unlock is never reversed, since reversing it would reopen the double-grant
// race. The accepted anomaly is a bounded window where a reward shows
// unlocked before the payout lands, never a double payout.
type RewardCoordinator interface {
	GrantIfEligible(ctx context.Context, userID, rewardID uuid.UUID) (GrantResult, error)
	CheckAndGrantAll(ctx context.Context, userID uuid.UUID) (CheckResult, error)
}

type rewardCoordinator struct {
	log          *logger.Logger
	tracer       trace.Tracer
	rewardRepo   repos.RewardDefinitionRepo
	grantRepo    repos.RewardGrantRepo
	progressRepo repos.UserProgressRepo
	walletRepo   repos.UserWalletRepo
	unlocks      UnlockRegistry
	wallet       WalletLedger
	experience   ExperienceLedger
}

func NewRewardCoordinator(
	baseLog *logger.Logger,
	rewardRepo repos.RewardDefinitionRepo,
	grantRepo repos.RewardGrantRepo,
	progressRepo repos.UserProgressRepo,
	walletRepo repos.UserWalletRepo,
	unlocks UnlockRegistry,
	wallet WalletLedger,
	experience ExperienceLedger,
) RewardCoordinator {
	return &rewardCoordinator{
		log:          baseLog.With("service", "RewardCoordinator"),
		tracer:       otel.Tracer("rewards"),
		rewardRepo:   rewardRepo,
		grantRepo:    grantRepo,
		progressRepo: progressRepo,
		walletRepo:   walletRepo,
		unlocks:      unlocks,
		wallet:       wallet,
		experience:   experience,
	}
}

// PayoutFor resolves the coin/experience bundle for a definition.
func PayoutFor(def *types.RewardDefinition) Payout {
	if def == nil {
		return Payout{}
	}
	if def.Kind == types.RewardKindBadge {
		return badgePayouts[def.Rarity]
	}
	return Payout{Coins: def.RewardCoins, Experience: def.RewardExperience}
}

func (rc *rewardCoordinator) GrantIfEligible(ctx context.Context, userID, rewardID uuid.UUID) (GrantResult, error) {
	ctx, span := rc.tracer.Start(ctx, "RewardCoordinator.GrantIfEligible",
		trace.WithAttributes(attribute.String("reward.id", rewardID.String())))
	defer span.End()

	def, err := rc.rewardRepo.GetByID(ctx, nil, rewardID)
	if err != nil {
		return GrantResult{}, fmt.Errorf("load reward definition: %w", err)
	}
	if def == nil {
		return GrantResult{}, apierr.RewardNotFound(rewardID.String())
	}
	if !def.Active {
		return GrantResult{}, apierr.RewardNotActive(rewardID.String())
	}

	// Unlock first. Only the caller that wins this insert pays out; every
	// other concurrent or repeated call observes fresh=false and stops here.
	fresh, err := rc.unlocks.Unlock(ctx, userID, rewardID)
	if err != nil {
		return GrantResult{}, err
	}
	if !fresh {
		return GrantResult{Granted: false}, nil
	}

	payout := PayoutFor(def)
	result := GrantResult{Granted: true}

	var payErr error
	if payout.Coins > 0 {
		if err := rc.wallet.AddCoins(ctx, userID, payout.Coins, "reward:"+def.Name); err != nil {
			payErr = fmt.Errorf("coin payout: %w", err)
		} else {
			result.CoinsAwarded = payout.Coins
		}
	}
	if payErr == nil && payout.Experience > 0 {
		expResult, err := rc.experience.AddExperience(ctx, userID, payout.Experience)
		if err != nil {
			payErr = fmt.Errorf("experience payout: %w", err)
		} else {
			result.ExperienceAwarded = payout.Experience
			result.LeveledUp = expResult.LeveledUp
			result.NewLevel = expResult.Level
		}
	}

	if payErr != nil {
		// The unlock is already durable. Record the gap for reconciliation
		// and surface it; never roll the unlock back.
		rc.log.Error("payout failed after committed unlock",
			"user_id", userID.String(),
			"reward_id", rewardID.String(),
			"error", payErr,
		)
		rc.recordGrant(ctx, userID, def, result, types.GrantStatusPartial, payErr)
		return result, apierr.PartialPayout(rewardID.String(), payErr)
	}

	rc.recordGrant(ctx, userID, def, result, types.GrantStatusPaid, nil)
	rc.log.Info("reward granted",
		"user_id", userID.String(),
		"reward_id", rewardID.String(),
		"coins", result.CoinsAwarded,
		"experience", result.ExperienceAwarded,
	)
	return result, nil
}

func (rc *rewardCoordinator) CheckAndGrantAll(ctx context.Context, userID uuid.UUID) (CheckResult, error) {
	ctx, span := rc.tracer.Start(ctx, "RewardCoordinator.CheckAndGrantAll")
	defer span.End()

	stats, err := rc.buildSnapshot(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}
	catalog, err := rc.rewardRepo.List(ctx, nil, "", true)
	if err != nil {
		return CheckResult{}, fmt.Errorf("load reward catalog: %w", err)
	}

	candidates := EvaluateCriteria(catalog, stats, time.Now().UTC())

	var out CheckResult
	var grantErrs []error
	for _, def := range candidates {
		res, err := rc.GrantIfEligible(ctx, userID, def.ID)
		if err != nil {
			if apierr.IsCode(err, apierr.CodePartialPayout) {
				grantErrs = append(grantErrs, err)
			} else {
				return out, err
			}
		}
		if !res.Granted {
			continue
		}
		out.Granted = append(out.Granted, GrantedReward{
			RewardID:   def.ID,
			Name:       def.Name,
			Kind:       def.Kind,
			Coins:      res.CoinsAwarded,
			Experience: res.ExperienceAwarded,
		})
		out.TotalCoins += res.CoinsAwarded
		out.TotalExperience += res.ExperienceAwarded
	}
	return out, errors.Join(grantErrs...)
}

// buildSnapshot loads the three aggregates concurrently; each read is
// independent and the snapshot is only advisory input to evaluation.
func (rc *rewardCoordinator) buildSnapshot(ctx context.Context, userID uuid.UUID) (StatsSnapshot, error) {
	var stats StatsSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		progress, err := rc.progressRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		if progress == nil {
			return apierr.UserNotFound(userID.String())
		}
		stats.Level = progress.Level
		stats.TotalSavings = progress.TotalSavings
		stats.StreakDays = progress.StreakDays
		stats.TransactionCount = progress.TransactionCount
		stats.TotalAmount = progress.TotalAmount
		return nil
	})
	g.Go(func() error {
		wallet, err := rc.walletRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}
		if wallet == nil {
			return apierr.UserNotFound(userID.String())
		}
		stats.CoinsEarned = int64(wallet.TotalEarned)
		return nil
	})
	g.Go(func() error {
		count, err := rc.unlocks.CountByKind(gctx, userID, types.RewardKindAchievement)
		if err != nil {
			return fmt.Errorf("count achievements: %w", err)
		}
		stats.AchievementCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return StatsSnapshot{}, err
	}
	return stats, nil
}

func (rc *rewardCoordinator) recordGrant(ctx context.Context, userID uuid.UUID, def *types.RewardDefinition, result GrantResult, status string, payErr error) {
	payload := map[string]interface{}{
		"reward_name": def.Name,
		"kind":        def.Kind,
		"coins":       result.CoinsAwarded,
		"experience":  result.ExperienceAwarded,
	}
	if payErr != nil {
		payload["error"] = payErr.Error()
	}
	raw, _ := json.Marshal(payload)
	row := &types.RewardGrant{
		ID:       uuid.New(),
		UserID:   userID,
		RewardID: def.ID,
		Status:   status,
		Payload:  datatypes.JSON(raw),
	}
	if _, err := rc.grantRepo.Create(ctx, nil, []*types.RewardGrant{row}); err != nil {
		// Audit failure never blocks the grant itself.
		rc.log.Warn("failed to record grant audit row",
			"user_id", userID.String(),
			"reward_id", def.ID.String(),
			"error", err,
		)
	}
}
