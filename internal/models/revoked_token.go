package models

import "time"

// RevokedToken records a refresh token blacklisted at logout, keyed by the
// token's JTI claim. Rows past ExpiresAt are dead weight and safe to purge.
type RevokedToken struct {
	JTI       string    `gorm:"type:varchar(36);primarykey" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
