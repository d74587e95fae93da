package controllers

import (
	"net/http"
	"time"

	dbpkg "factura/db"
	"factura/models"

	"github.com/gin-gonic/gin"
)

type InvoiceItemRequest struct {
	Description string  `json:"description" form:"description"`
	Quantity    float64 `json:"quantity" form:"quantity"`
	Rate        float64 `json:"rate" form:"rate"`
}

type InvoiceRequest struct {
	Title       string               `json:"title" form:"title"`
	Description string               `json:"description" form:"description"`
	Currency    string               `json:"currency" form:"currency"`
	ClientID    int64                `json:"client_id" form:"client_id"`
	InvoiceDate *time.Time           `json:"invoice_date" form:"invoice_date"`
	DueDate     *time.Time           `json:"due_date" form:"due_date"`
	Items       []InvoiceItemRequest `json:"items" form:"items"`
}

// CreateInvoice creates the invoice plus its items in one transaction.
// The total amount is computed server-side from the items; a client sent
// by id must belong to the logged user.
func CreateInvoice(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, ErrMsgUnauthorized, http.StatusUnauthorized)
		return
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		RespondError(c, "missing field: title", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		RespondError(c, "invoice needs at least one item", http.StatusBadRequest)
		return
	}
	for _, item := range req.Items {
		if item.Description == "" || item.Quantity <= 0 || item.Rate < 0 {
			RespondError(c, "invalid invoice item", http.StatusBadRequest)
			return
		}
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var client models.Client
	if err := db.Where("id = ? AND user_id = ?", req.ClientID, user.ID).First(&client).Error; err != nil {
		RespondError(c, "client not found", http.StatusBadRequest)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	var total float64
	items := make([]models.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		lineTotal := item.Quantity * item.Rate
		total += lineTotal
		items = append(items, models.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Total:       lineTotal,
		})
	}

	invoice := models.Invoice{
		UserID:      user.ID,
		ClientID:    client.ID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      total,
		Currency:    currency,
		Status:      models.INVOICE_STATUS_PENDING,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
	}

	tx := db.Begin()
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
		if err := tx.Create(&items[i]).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	invoice.Items = items
	invoice.Client = client
	RespondSuccess(c, invoice)
}

func GetInvoices(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, ErrMsgUnauthorized, http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var invoices []models.Invoice
	err := db.Where("user_id = ?", user.ID).
		Preload("Client").
		Preload("Items").
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, invoices)
}

func findOwnedInvoice(c *gin.Context, id int64) (*models.Invoice, bool) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, ErrMsgUnauthorized, http.StatusUnauthorized)
		return nil, false
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return nil, false
	}
	var invoice models.Invoice
	err := db.Where("id = ? AND user_id = ?", id, user.ID).
		Preload("Client").
		Preload("Items").
		First(&invoice).Error
	if err != nil {
		RespondError(c, "invoice not found", http.StatusNotFound)
		return nil, false
	}
	return &invoice, true
}

func GetInvoiceByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	invoice, ok := findOwnedInvoice(c, id)
	if !ok {
		return
	}
	RespondSuccess(c, invoice)
}

type InvoiceStatusRequest struct {
	Status string `json:"status" form:"status"`
}

func UpdateInvoiceStatus(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	invoice, ok := findOwnedInvoice(c, id)
	if !ok {
		return
	}

	var req InvoiceStatusRequest
	if err := c.Bind(&req); err != nil || !models.IsValidInvoiceStatus(req.Status) {
		RespondError(c, "status must be pending, paid or overdue", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if err := db.Model(invoice).Update("status", req.Status).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, invoice)
}

func DeleteInvoice(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	invoice, ok := findOwnedInvoice(c, id)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)

	tx := db.Begin()
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Delete(&models.Invoice{}, "id = ?", invoice.ID).Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"deleted": true})
}
