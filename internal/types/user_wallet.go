package types

import (
	"time"

	"github.com/google/uuid"
)

// UserWallet is the coin aggregate. balance == total_earned - total_spent
// after every committed write, and balance never goes negative: debits are
// applied with a guarded conditional update, never read-modify-write in Go.
type UserWallet struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Balance     int       `gorm:"not null;default:0;column:balance" json:"balance"`
	TotalEarned int       `gorm:"not null;default:0;column:total_earned" json:"total_earned"`
	TotalSpent  int       `gorm:"not null;default:0;column:total_spent" json:"total_spent"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserWallet) TableName() string {
	return "user_wallet"
}
