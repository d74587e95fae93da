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
	"github.com/jinzhu/gorm"
)

// rotateVerificationCode deletes every prior code for the user and
// creates a fresh one, inside the caller's transaction. Keeping both
// statements in one transaction is what guarantees at most one active
// code per user under concurrent resends and verify attempts.
func rotateVerificationCode(tx *gorm.DB, userID string, conf config.Configuration) (string, time.Time, error) {
	if err := tx.Where("user_id = ?", userID).Delete(&models.VerificationCode{}).Error; err != nil {
		return "", time.Time{}, err
	}
	code := tools.RandomNumbers(conf.Security.CodeLen)
	expires := time.Now().Add(time.Duration(conf.Security.CodeTTLMinutes) * time.Minute)
	record := models.VerificationCode{
		UserID:    userID,
		Token:     code,
		ExpiresAt: &expires,
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", time.Time{}, err
	}
	return code, expires, nil
}

// sendVerificationCode delivers the code best-effort; failures are
// logged and never fail the request.
func sendVerificationCode(c *gin.Context, email, code string) {
	sender := mail.SenderInstance(c)
	if sender == nil {
		log.Printf("verification: no mail sender configured, code for %s not sent", email)
		return
	}
	if err := sender.SendVerificationCode(requestCtx(c), email, code); err != nil {
		log.Printf("verification: send failed to=%s err=%v", email, err)
	}
}

type VerifyCodeRequest struct {
	Code         string `json:"code" form:"code"`
	SessionToken string `json:"sessionToken" form:"sessionToken"`
}

// VerifyCode confirms email ownership. The code lookup and the state
// transition run in a single transaction: match an unexpired code for the
// session's user, set email_verified, then delete all of the user's codes
// so a stale code can never be replayed after success.
//
// The invalid-code response is identical whether the code was wrong,
// expired or never issued.
func VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.Bind(&req); err != nil || req.Code == "" || req.SessionToken == "" {
		RespondError(c, "code and sessionToken are required", http.StatusBadRequest)
		return
	}

	signer := token.SignerInstance(c)
	claims, err := signer.Verify(req.SessionToken, token.PurposeVerifySession)
	if err != nil {
		RespondError(c, ErrMsgInvalidSession, http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		RespondError(c, ErrMsgInvalidSession, http.StatusUnauthorized)
		return
	}
	if user.IsVerified() {
		RespondError(c, ErrMsgAlreadyVerified, http.StatusBadRequest)
		return
	}

	now := time.Now()

	tx := db.Begin()

	var record models.VerificationCode
	err = tx.Where("token = ? AND user_id = ? AND expires_at > ?", req.Code, user.ID, now).
		First(&record).Error
	if err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInvalidCode, http.StatusBadRequest)
		return
	}

	if err := tx.Model(&user).Update("email_verified", &now).Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.VerificationCode{}).Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"message": "email verified successfully"})
}

type ResendCodeRequest struct {
	SessionToken string `json:"sessionToken" form:"sessionToken"`
}

// ResendCode rotates the user's one-time code and re-sends it. A fixed
// cooldown window applies: at most one issuance per window, measured from
// the newest code's created_at.
func ResendCode(c *gin.Context) {
	var req ResendCodeRequest
	if err := c.Bind(&req); err != nil || req.SessionToken == "" {
		RespondError(c, "sessionToken is required", http.StatusBadRequest)
		return
	}

	signer := token.SignerInstance(c)
	claims, err := signer.Verify(req.SessionToken, token.PurposeVerifySession)
	if err != nil {
		RespondError(c, ErrMsgInvalidSession, http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		RespondError(c, "user not found", http.StatusNotFound)
		return
	}
	if user.IsVerified() {
		RespondError(c, ErrMsgAlreadyVerified, http.StatusBadRequest)
		return
	}

	conf := config.Instance(c)
	cooldown := time.Duration(conf.Security.ResendCooldownSeconds) * time.Second

	var recent models.VerificationCode
	err = db.Where("user_id = ? AND created_at > ?", user.ID, time.Now().Add(-cooldown)).
		First(&recent).Error
	if err == nil {
		RespondError(c, ErrMsgResendCooldown, http.StatusTooManyRequests)
		return
	}

	tx := db.Begin()
	code, expires, err := rotateVerificationCode(tx, user.ID, conf)
	if err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	sendVerificationCode(c, user.Email, code)

	RespondSuccess(c, gin.H{
		"message":             "new verification code sent",
		"verificationExpires": expires,
	})
}

type VerifySessionRequest struct {
	SessionToken string `json:"sessionToken" form:"sessionToken"`
}

// VerifySession gates the code-entry screen: it reports the pending
// user's email and the active code's expiry so the client can run its
// countdown. Read-only.
func VerifySession(c *gin.Context) {
	var req VerifySessionRequest
	if err := c.Bind(&req); err != nil || req.SessionToken == "" {
		RespondError(c, "sessionToken is required", http.StatusBadRequest)
		return
	}

	signer := token.SignerInstance(c)
	claims, err := signer.Verify(req.SessionToken, token.PurposeVerifySession)
	if err != nil {
		RespondError(c, ErrMsgInvalidSession, http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		RespondError(c, "user not found", http.StatusNotFound)
		return
	}
	if user.IsVerified() {
		RespondError(c, ErrMsgAlreadyVerified, http.StatusBadRequest)
		return
	}

	var active models.VerificationCode
	var verificationExpires *time.Time
	err = db.Where("user_id = ? AND expires_at > ?", user.ID, time.Now()).
		Order("expires_at desc").
		First(&active).Error
	if err == nil {
		verificationExpires = active.ExpiresAt
	}

	RespondSuccess(c, gin.H{
		"email":               user.Email,
		"verificationExpires": verificationExpires,
	})
}
