package types

import (
	"time"

	"github.com/google/uuid"
)

// UserUnlock records one user owning one reward. The composite unique index
// is the at-most-once guard the coordinator relies on: an insert either
// lands exactly once or is a conflict no-op.
type UserUnlock struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"not null;uniqueIndex:idx_user_unlock_pair;column:user_id" json:"user_id"`
	RewardID   uuid.UUID         `gorm:"not null;uniqueIndex:idx_user_unlock_pair;column:reward_id" json:"reward_id"`
	Reward     *RewardDefinition `gorm:"constraint:OnDelete:CASCADE;foreignKey:RewardID;references:ID" json:"-"`
	UnlockedAt time.Time         `gorm:"not null;default:now();column:unlocked_at" json:"unlocked_at"`
}

func (UserUnlock) TableName() string {
	return "user_unlock"
}
