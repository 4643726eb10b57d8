package models

import "time"

// Session records one issued login token. The token itself is a stateless
// JWT; the row exists so logout can revoke everything a user holds.
type Session struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	UserID    uint64     `gorm:"not null;index" json:"user_id"`
	TokenID   string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"token_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
