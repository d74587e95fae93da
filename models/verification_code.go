package models

import "time"

// VerificationCode is a short-lived numeric one-time code proving email
// ownership. At most one set of active codes exists per user: every
// issuance deletes the user's prior codes in the same transaction.
type VerificationCode struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    string     `gorm:"not null;index;size:36" json:"user_id"`
	Token     string     `gorm:"not null;index" json:"-"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt *time.Time `json:"created_at"`
}

func (vc VerificationCode) IsExpired(now time.Time) bool {
	if vc.ExpiresAt == nil {
		return false
	}
	return now.After(*vc.ExpiresAt)
}
