package models

import "time"

// PasswordReset persists one row per issued reset link. The signed token
// alone could be replayed until it expires; the row is the authority for
// single use. Rows are never deleted, so a second attempt with a consumed
// token can be told apart from a token that never existed (internally).
type PasswordReset struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    string     `gorm:"not null;index;size:36" json:"user_id"`
	Token     string     `gorm:"not null;index" json:"-"`
	ExpiresAt *time.Time `json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (pr PasswordReset) IsExpired(now time.Time) bool {
	if pr.ExpiresAt == nil {
		return false
	}
	return now.After(*pr.ExpiresAt)
}
