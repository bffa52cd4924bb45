package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
)

type ExperienceResult struct {
	LeveledUp         bool `json:"leveled_up"`
	Level             int  `json:"new_level"`
	ExperienceAwarded int  `json:"experience_awarded"`
}

// ExperienceLedger owns the level/experience aggregate. Concurrent grants for
// the same user serialize on a storage row lock, never an in-process mutex,
// so the invariant holds across multiple service instances.
type ExperienceLedger interface {
	AddExperience(ctx context.Context, userID uuid.UUID, amount int) (ExperienceResult, error)
}

type experienceLedger struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.UserProgressRepo
}

func NewExperienceLedger(db *gorm.DB, baseLog *logger.Logger, progressRepo repos.UserProgressRepo) ExperienceLedger {
	return &experienceLedger{
		db:           db,
		log:          baseLog.With("service", "ExperienceLedger"),
		progressRepo: progressRepo,
	}
}

func (el *experienceLedger) AddExperience(ctx context.Context, userID uuid.UUID, amount int) (ExperienceResult, error) {
	if amount <= 0 {
		return ExperienceResult{}, apierr.InvalidAmount(amount)
	}

	var result ExperienceResult
	err := el.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, err := el.progressRepo.GetLockedByUserID(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("lock progress row: %w", err)
		}
		if progress == nil {
			return apierr.UserNotFound(userID.String())
		}

		newLevel, newExperience, leveledUp := advanceLevel(progress.Level, progress.Experience, amount)
		if err := el.progressRepo.UpdateFields(ctx, tx, userID, map[string]interface{}{
			"level":      newLevel,
			"experience": newExperience,
		}); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}

		result = ExperienceResult{
			LeveledUp:         leveledUp,
			Level:             newLevel,
			ExperienceAwarded: amount,
		}
		return nil
	})
	if err != nil {
		return ExperienceResult{}, err
	}

	el.log.Debug("experience granted",
		"user_id", userID.String(),
		"amount", amount,
		"level", result.Level,
		"leveled_up", result.LeveledUp,
	)
	return result, nil
}

// advanceLevel applies an experience grant, carrying excess over level
// boundaries. The loop supports arbitrarily large grants: one call can cross
// several levels. Post-condition: experience < level*100.
func advanceLevel(level, experience, amount int) (newLevel, newExperience int, leveledUp bool) {
	newLevel = level
	newExperience = experience + amount
	for newExperience >= newLevel*100 {
		newExperience -= newLevel * 100
		newLevel++
		leveledUp = true
	}
	return newLevel, newExperience, leveledUp
}
