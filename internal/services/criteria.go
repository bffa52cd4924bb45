package services

import (
	"time"

	"github.com/monzter50/api-gamification-finances/internal/types"
)

// StatsSnapshot is the read-only view of a user's stats that reward criteria
// are evaluated against. It is assembled once per check; evaluation itself
// never touches storage.
type StatsSnapshot struct {
	AchievementCount int64
	Level            int
	CoinsEarned      int64
	TotalSavings     int64
	StreakDays       int
	TransactionCount int
	TotalAmount      int64
}

// EvaluateCriteria returns the subset of the catalog whose unlock criteria
// the snapshot satisfies at the given instant. Inactive and
// currently-unavailable definitions are skipped, as are definitions with a
// criteria kind this version does not know (never an error: an old binary
// must tolerate a newer catalog). Result order is unspecified; callers treat
// it as a set.
func EvaluateCriteria(catalog []*types.RewardDefinition, stats StatsSnapshot, now time.Time) []*types.RewardDefinition {
	var satisfied []*types.RewardDefinition
	for _, def := range catalog {
		if def == nil || !def.Active {
			continue
		}
		if !def.AvailableAt(now) {
			continue
		}
		value, known := snapshotValue(def.CriteriaKind, stats)
		if !known {
			continue
		}
		if value >= def.CriteriaThreshold {
			satisfied = append(satisfied, def)
		}
	}
	return satisfied
}

func snapshotValue(kind types.CriteriaKind, stats StatsSnapshot) (int64, bool) {
	switch kind {
	case types.CriteriaTransactionCount:
		return int64(stats.TransactionCount), true
	case types.CriteriaTotalAmount:
		return stats.TotalAmount, true
	case types.CriteriaSavingsGoal, types.CriteriaSavingsMilestone:
		return stats.TotalSavings, true
	case types.CriteriaStreakDays:
		return int64(stats.StreakDays), true
	case types.CriteriaLevelReached:
		return int64(stats.Level), true
	case types.CriteriaAchievementCount:
		return stats.AchievementCount, true
	case types.CriteriaCoinsEarned:
		return stats.CoinsEarned, true
	default:
		return 0, false
	}
}
