package types

import (
	"time"

	"github.com/google/uuid"
)

type RewardKind string

const (
	RewardKindAchievement RewardKind = "achievement"
	RewardKindBadge       RewardKind = "badge"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityUnique    Rarity = "unique"
)

type CriteriaKind string

const (
	CriteriaTransactionCount CriteriaKind = "transaction_count"
	CriteriaTotalAmount      CriteriaKind = "total_amount"
	CriteriaSavingsGoal      CriteriaKind = "savings_goal"
	CriteriaStreakDays       CriteriaKind = "streak_days"
	CriteriaLevelReached     CriteriaKind = "level_reached"
	CriteriaAchievementCount CriteriaKind = "achievement_count"
	CriteriaCoinsEarned      CriteriaKind = "coins_earned"
	CriteriaSavingsMilestone CriteriaKind = "savings_milestone"
)

// RewardDefinition is the admin-writable catalog entry backing both
// achievements and badges. Badges pay out from the rarity schedule and may be
// limited to an availability window; achievements carry their own explicit
// coin/experience payout.
type RewardDefinition struct {
	ID                uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Kind              RewardKind   `gorm:"not null;column:kind;index" json:"kind"`
	Name              string       `gorm:"not null;column:name" json:"name"`
	Description       string       `gorm:"column:description" json:"description"`
	Rarity            Rarity       `gorm:"not null;default:'common';column:rarity" json:"rarity"`
	CriteriaKind      CriteriaKind `gorm:"not null;column:criteria_kind" json:"criteria_kind"`
	CriteriaThreshold int64        `gorm:"not null;default:0;column:criteria_threshold" json:"criteria_threshold"`
	RewardCoins       int          `gorm:"not null;default:0;column:reward_coins" json:"reward_coins"`
	RewardExperience  int          `gorm:"not null;default:0;column:reward_experience" json:"reward_experience"`
	Limited           bool         `gorm:"not null;default:false;column:limited" json:"limited"`
	AvailableFrom     *time.Time   `gorm:"column:available_from" json:"available_from,omitempty"`
	AvailableUntil    *time.Time   `gorm:"column:available_until" json:"available_until,omitempty"`
	Active            bool         `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt         time.Time    `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (RewardDefinition) TableName() string {
	return "reward_definition"
}

// AvailableAt reports whether the reward can be granted at the given instant.
// The window is only enforced for limited rewards.
func (r *RewardDefinition) AvailableAt(now time.Time) bool {
	if !r.Limited {
		return true
	}
	if r.AvailableFrom != nil && now.Before(*r.AvailableFrom) {
		return false
	}
	if r.AvailableUntil != nil && now.After(*r.AvailableUntil) {
		return false
	}
	return true
}
