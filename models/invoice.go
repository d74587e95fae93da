package models

import "time"

const INVOICE_STATUS_PENDING = "pending"
const INVOICE_STATUS_PAID = "paid"
const INVOICE_STATUS_OVERDUE = "overdue"

// Invoice belongs to a user and references one of that user's clients.
// Amount is always the sum of the item totals, computed server-side.
type Invoice struct {
	ID          int64         `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID      string        `gorm:"not null;index;size:36" json:"user_id"`
	ClientID    int64         `gorm:"not null;index" json:"client_id"`
	Client      Client        `gorm:"association_autoupdate:false;association_autocreate:false" json:"client"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description"`
	Amount      float64       `gorm:"not null" json:"amount"`
	Currency    string        `gorm:"not null;default:'USD'" json:"currency"`
	Status      string        `gorm:"not null;default:'pending'" json:"status"`
	InvoiceDate *time.Time    `json:"invoice_date"`
	DueDate     *time.Time    `json:"due_date"`
	Items       []InvoiceItem `json:"items"`
	CreatedAt   *time.Time    `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at"`
}

type InvoiceItem struct {
	ID          int64   `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	InvoiceID   int64   `gorm:"not null;index" json:"invoice_id"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Rate        float64 `gorm:"not null" json:"rate"`
	Total       float64 `gorm:"not null" json:"total"`
}

func IsValidInvoiceStatus(status string) bool {
	switch status {
	case INVOICE_STATUS_PENDING, INVOICE_STATUS_PAID, INVOICE_STATUS_OVERDUE:
		return true
	}
	return false
}
