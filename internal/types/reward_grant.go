package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	GrantStatusPaid    = "paid"
	GrantStatusPartial = "partial"
)

// RewardGrant is the audit row written for every fresh unlock. Rows with
// status "partial" mark an unlock whose payout did not fully land and are the
// input to offline reconciliation.
type RewardGrant struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"not null;index;column:user_id" json:"user_id"`
	RewardID  uuid.UUID      `gorm:"not null;index;column:reward_id" json:"reward_id"`
	Status    string         `gorm:"not null;column:status" json:"status"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (RewardGrant) TableName() string {
	return "reward_grant"
}
