package controllers

import (
	"log"
	"net/http"
	"time"

	"factura/config"
	dbpkg "factura/db"
	"factura/mail"
	"factura/models"
	"factura/token"
	"factura/tools"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// POST /api/forgot-password (public)
// Always answers {"success":true}, whether or not the account exists.
// When it does, a signed reset token is issued together with a persisted
// single-use row; the row, not the signature, is what prevents replay.
func ForgotPassword(c *gin.Context) {
	type Request struct {
		Email string `json:"email" form:"email"`
	}

	var req Request
	if err := c.Bind(&req); err != nil || req.Email == "" {
		// anti-enumeration: always success
		RespondSuccess(c, gin.H{"success": true})
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondSuccess(c, gin.H{"success": true})
		return
	}

	var user models.User
	if err := db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		RespondSuccess(c, gin.H{"success": true})
		return
	}

	conf := config.Instance(c)
	ttl := time.Duration(conf.Security.ResetTokenTTLMinutes) * time.Minute

	signer := token.SignerInstance(c)
	signed, err := signer.Issue(token.Claims{
		UserID:  user.ID,
		Purpose: token.PurposePasswordReset,
	}, ttl)
	if err != nil {
		log.Printf("forgot password: token issue failed user_id=%s err=%v", user.ID, err)
		RespondSuccess(c, gin.H{"success": true})
		return
	}

	expires := time.Now().Add(ttl)
	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     signed,
		ExpiresAt: &expires,
		Used:      false,
	}
	if err := db.Create(&reset).Error; err != nil {
		log.Printf("forgot password: row create failed user_id=%s err=%v", user.ID, err)
		RespondSuccess(c, gin.H{"success": true})
		return
	}

	resetURL := conf.AppURL + "/reset-password?token=" + signed
	sender := mail.SenderInstance(c)
	if sender == nil {
		log.Printf("forgot password: no mail sender configured user_id=%s", user.ID)
	} else if err := sender.SendPasswordResetLink(requestCtx(c), user.Email, resetURL); err != nil {
		log.Printf("forgot password: send failed user_id=%s err=%v", user.ID, err)
	}

	RespondSuccess(c, gin.H{"success": true})
}

// findActiveResetToken verifies the signature and purpose, then looks up
// the unconsumed, unexpired row. The caller gets the same miss either
// way; the internal reason is only logged.
func findActiveResetToken(c *gin.Context, rawToken string) (*models.PasswordReset, bool) {
	signer := token.SignerInstance(c)
	if _, err := signer.Verify(rawToken, token.PurposePasswordReset); err != nil {
		return nil, false
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		return nil, false
	}

	var reset models.PasswordReset
	err := db.Where("token = ? AND used = ? AND expires_at > ?", rawToken, false, time.Now()).
		First(&reset).Error
	if err != nil {
		// Distinguish consumed from expired internally; the response
		// stays uniform.
		var any models.PasswordReset
		if db.Where("token = ?", rawToken).First(&any).Error == nil {
			if any.Used {
				log.Printf("password reset: token already used user_id=%s", any.UserID)
			} else {
				log.Printf("password reset: token expired user_id=%s", any.UserID)
			}
		}
		return nil, false
	}
	return &reset, true
}

// POST /api/validate-reset-token (public)
// Read-only gate for the reset form; does not consume the token.
func ValidateResetToken(c *gin.Context) {
	type Request struct {
		Token string `json:"token" form:"token"`
	}

	var req Request
	if err := c.Bind(&req); err != nil || req.Token == "" {
		RespondError(c, ErrMsgInvalidResetToken, http.StatusBadRequest)
		return
	}

	if _, ok := findActiveResetToken(c, req.Token); !ok {
		RespondError(c, ErrMsgInvalidResetToken, http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"valid": true})
}

// POST /api/reset-password (public)
// Consumes the token: the password update and the used=true flip commit
// together or not at all. A crash between them would otherwise leave
// either a replayable link or an account that can never reset.
func ResetPassword(c *gin.Context) {
	type Request struct {
		Token    string `json:"token" form:"token"`
		Password string `json:"password" form:"password"`
	}

	var req Request
	if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
		RespondError(c, ErrMsgInvalidResetToken, http.StatusBadRequest)
		return
	}
	if tools.CheckPassword(req.Password) != "" {
		RespondError(c, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	reset, ok := findActiveResetToken(c, req.Token)
	if !ok {
		RespondError(c, ErrMsgInvalidResetToken, http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)

	var user models.User
	if err := db.Where("id = ?", reset.UserID).First(&user).Error; err != nil {
		RespondError(c, ErrMsgInvalidResetToken, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	tx := db.Begin()
	if err := tx.Model(&user).Update("password", string(hash)).Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Model(reset).Update("used", true).Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"success": true})
}
