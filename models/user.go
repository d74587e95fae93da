package models

import (
	"strings"
	"time"

	"factura/tools"
)

// User is an account in the system.
// EmailVerified stays null until the user confirms their address; it is set
// exactly once by the verification flow and never unset afterwards.
type User struct {
	ID            string     `gorm:"primary_key;size:36" json:"id"`
	Name          string     `gorm:"not null" json:"name" form:"name"`
	Email         string     `gorm:"not null;unique" json:"email" form:"email"`
	Password      string     `gorm:"not null" json:"-" form:"password"`
	EmailVerified *time.Time `gorm:"column:email_verified" json:"email_verified"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

func (user User) IsVerified() bool {
	return user.EmailVerified != nil
}

// NormalizeEmail canonicalizes an address; uniqueness and lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (user User) MissingFields() string {
	if user.Name == "" {
		return "name"
	} else if user.Email == "" {
		return "email"
	} else if user.Password == "" {
		return "password"
	} else if tools.CheckPassword(user.Password) != "" {
		return tools.CheckPassword(user.Password)
	}
	return ""
}
