package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress is the experience aggregate. Level and experience are only
// mutated through the experience ledger; the invariant
// experience < level*100 holds after every committed write.
//
// The activity counters (savings, streak, transactions) are updated by the
// profile/transaction surfaces and feed reward criteria evaluation as a
// read-only snapshot.
type UserProgress struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Level            int       `gorm:"not null;default:1;column:level" json:"level"`
	Experience       int       `gorm:"not null;default:0;column:experience" json:"experience"`
	TotalSavings     int64     `gorm:"not null;default:0;column:total_savings" json:"total_savings"`
	StreakDays       int       `gorm:"not null;default:0;column:streak_days" json:"streak_days"`
	TransactionCount int       `gorm:"not null;default:0;column:transaction_count" json:"transaction_count"`
	TotalAmount      int64     `gorm:"not null;default:0;column:total_amount" json:"total_amount"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// ExperienceForNextLevel is the threshold at which the next level is reached.
func (p *UserProgress) ExperienceForNextLevel() int {
	return p.Level * 100
}
