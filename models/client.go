package models

import "time"

// Client is a customer that invoices are billed to. Clients belong to the
// user that created them; all queries are scoped by user_id.
type Client struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    string     `gorm:"not null;index;size:36" json:"user_id"`
	Name      string     `gorm:"not null" json:"name" form:"name"`
	Email     string     `json:"email" form:"email"`
	Phone     string     `json:"phone" form:"phone"`
	Company   string     `json:"company" form:"company"`
	Address   string     `json:"address" form:"address"`
	Notes     string     `json:"notes" form:"notes"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (client Client) MissingFields() string {
	if client.Name == "" {
		return "name"
	}
	return ""
}
