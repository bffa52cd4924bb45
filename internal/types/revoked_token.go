package types

import (
	"time"

	"github.com/google/uuid"
)

// RevokedToken is the Postgres-backed revocation record, used when no Redis
// address is configured. ExpiresAt is copied from the token's own exp claim;
// rows past it are logically absent whether or not the sweep has run.
type RevokedToken struct {
	TokenHash string    `gorm:"primaryKey;column:token_hash" json:"token_hash"`
	UserID    uuid.UUID `gorm:"not null;index;column:user_id" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index;column:expires_at" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_token"
}
