package controllers

import (
	"net/http"

	dbpkg "factura/db"
	"factura/models"

	"github.com/gin-gonic/gin"
)

type ClientRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Company string `json:"company" form:"company"`
	Address string `json:"address" form:"address"`
	Notes   string `json:"notes" form:"notes"`
}

func CreateClient(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, ErrMsgUnauthorized, http.StatusUnauthorized)
		return
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	client := models.Client{
		UserID:  user.ID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if missing := client.MissingFields(); missing != "" {
		RespondError(c, "missing field: "+missing, http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	if err := db.Create(&client).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, client)
}

func GetClients(c *gin.Context) {
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

	var clients []models.Client
	if err := db.Where("user_id = ?", user.ID).Order("name asc").Find(&clients).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, clients)
}

// findOwnedClient loads the client only when it belongs to the logged
// user; a miss and another user's row look the same (404).
func findOwnedClient(c *gin.Context, id int64) (*models.Client, bool) {
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
	var client models.Client
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&client).Error; err != nil {
		RespondError(c, "client not found", http.StatusNotFound)
		return nil, false
	}
	return &client, true
}

func GetClientByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	client, ok := findOwnedClient(c, id)
	if !ok {
		return
	}
	RespondSuccess(c, client)
}

func UpdateClient(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	client, ok := findOwnedClient(c, id)
	if !ok {
		return
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		RespondError(c, "missing field: name", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	updates := map[string]interface{}{
		"name":    req.Name,
		"email":   req.Email,
		"phone":   req.Phone,
		"company": req.Company,
		"address": req.Address,
		"notes":   req.Notes,
	}
	if err := db.Model(client).Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, client)
}

func DeleteClient(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	client, ok := findOwnedClient(c, id)
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)

	var count int64
	if err := db.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&count).Error; err != nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if count > 0 {
		RespondError(c, "client has invoices and cannot be deleted", http.StatusConflict)
		return
	}

	if err := db.Delete(client).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"deleted": true})
}
