package controllers

import (
	"net/http"

	dbpkg "factura/db"
	"factura/models"

	"github.com/gin-gonic/gin"
)

type statusTotalsRow struct {
	Status string  `json:"status"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type DashboardSummary struct {
	Clients       int64             `json:"clients"`
	Invoices      int64             `json:"invoices"`
	TotalInvoiced float64           `json:"total_invoiced"`
	ByStatus      []statusTotalsRow `json:"by_status"`
}

// GET /api/dashboard/summary
// Per-user aggregates for the dashboard cards: client count, invoice
// count, grand total and count/amount per status.
func GetDashboardSummary(c *gin.Context) {
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

	summary := DashboardSummary{ByStatus: []statusTotalsRow{}}

	if err := db.Model(&models.Client{}).Where("user_id = ?", user.ID).Count(&summary.Clients).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := db.Model(&models.Invoice{}).Where("user_id = ?", user.ID).Count(&summary.Invoices).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var rows []statusTotalsRow
	err := db.Table("invoices").
		Select("status, count(*) as count, coalesce(sum(amount), 0) as amount").
		Where("user_id = ?", user.ID).
		Group("status").
		Order("status asc").
		Scan(&rows).Error
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	for _, row := range rows {
		summary.TotalInvoiced += row.Amount
	}
	summary.ByStatus = append(summary.ByStatus, rows...)

	RespondSuccess(c, summary)
}
