package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/monzter50/api-gamification-finances/internal/types"
)

func defWithCriteria(name string, kind types.CriteriaKind, threshold int64) *types.RewardDefinition {
	return &types.RewardDefinition{
		ID:                uuid.New(),
		Kind:              types.RewardKindAchievement,
		Name:              name,
		Rarity:            types.RarityCommon,
		CriteriaKind:      kind,
		CriteriaThreshold: threshold,
		Active:            true,
	}
}

func namesOf(defs []*types.RewardDefinition) map[string]bool {
	out := map[string]bool{}
	for _, d := range defs {
		out[d.Name] = true
	}
	return out
}

func TestEvaluateCriteriaThresholds(t *testing.T) {
	now := time.Now()
	stats := StatsSnapshot{
		AchievementCount: 3,
		Level:            4,
		CoinsEarned:      120,
		TotalSavings:     5000,
		StreakDays:       7,
		TransactionCount: 12,
		TotalAmount:      9999,
	}
	catalog := []*types.RewardDefinition{
		defWithCriteria("txn_met", types.CriteriaTransactionCount, 10),
		defWithCriteria("txn_unmet", types.CriteriaTransactionCount, 13),
		defWithCriteria("level_met_exact", types.CriteriaLevelReached, 4),
		defWithCriteria("coins_met", types.CriteriaCoinsEarned, 100),
		defWithCriteria("savings_met", types.CriteriaSavingsGoal, 5000),
		defWithCriteria("milestone_unmet", types.CriteriaSavingsMilestone, 10000),
		defWithCriteria("streak_met", types.CriteriaStreakDays, 7),
		defWithCriteria("achievements_unmet", types.CriteriaAchievementCount, 5),
		defWithCriteria("amount_met", types.CriteriaTotalAmount, 9999),
	}

	got := namesOf(EvaluateCriteria(catalog, stats, now))
	want := []string{"txn_met", "level_met_exact", "coins_met", "savings_met", "streak_met", "amount_met"}
	if len(got) != len(want) {
		t.Fatalf("got %d satisfied definitions %v, want %d", len(got), got, len(want))
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("expected %q to be satisfied", name)
		}
	}
}

func TestEvaluateCriteriaSkipsInactiveAndUnknown(t *testing.T) {
	now := time.Now()
	stats := StatsSnapshot{Level: 10}

	inactive := defWithCriteria("inactive", types.CriteriaLevelReached, 1)
	inactive.Active = false
	unknown := defWithCriteria("unknown_kind", types.CriteriaKind("moon_phase"), 0)

	got := EvaluateCriteria([]*types.RewardDefinition{inactive, unknown, nil}, stats, now)
	if len(got) != 0 {
		t.Fatalf("expected no satisfied definitions, got %v", namesOf(got))
	}
}

func TestEvaluateCriteriaAvailabilityWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)
	stats := StatsSnapshot{Level: 10}

	inWindow := defWithCriteria("in_window", types.CriteriaLevelReached, 1)
	inWindow.Limited = true
	inWindow.AvailableFrom = &before
	inWindow.AvailableUntil = &after

	expired := defWithCriteria("window_closed", types.CriteriaLevelReached, 1)
	expired.Limited = true
	windowEnd := now.Add(-time.Hour)
	expired.AvailableUntil = &windowEnd

	notYet := defWithCriteria("window_not_open", types.CriteriaLevelReached, 1)
	notYet.Limited = true
	windowStart := now.Add(time.Hour)
	notYet.AvailableFrom = &windowStart

	// Window set but not limited: always available.
	unlimited := defWithCriteria("unlimited_ignores_window", types.CriteriaLevelReached, 1)
	unlimited.AvailableUntil = &windowEnd

	got := namesOf(EvaluateCriteria([]*types.RewardDefinition{inWindow, expired, notYet, unlimited}, stats, now))
	if !got["in_window"] {
		t.Errorf("expected in_window to be satisfied")
	}
	if !got["unlimited_ignores_window"] {
		t.Errorf("expected unlimited definition to ignore its window")
	}
	if got["window_closed"] || got["window_not_open"] {
		t.Errorf("limited definitions outside their window must be excluded, got %v", got)
	}
}
