package controllers

import (
	"net/http"
	"time"

	"factura/config"
	dbpkg "factura/db"
	"factura/models"
	"factura/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login validates credentials and issues a session. The 401 is identical
// for an unknown email and a wrong password.
//
// A correct password on an unverified account is not a failure: the code
// is rotated and re-sent, and the response carries a fresh
// verification-session token so the client can go straight to the
// code-entry screen. This is a tagged result (403 + "unverified"), not an
// error string to parse.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(c, "email and password are required", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		RespondError(c, ErrMsgInvalidCredentials, http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		RespondError(c, ErrMsgInvalidCredentials, http.StatusUnauthorized)
		return
	}

	conf := config.Instance(c)

	if !user.IsVerified() {
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

		sessionToken, err := issueVerifySession(c, user, conf)
		if err != nil {
			RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":                    ErrMsgUnverified,
			"verificationSessionToken": sessionToken,
			"verificationExpires":      expires,
		})
		return
	}

	signer := token.SignerInstance(c)
	ttl := time.Duration(conf.Security.SessionTTLMinutes) * time.Minute
	signed, err := signer.Issue(token.Claims{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Purpose:       token.PurposeSession,
		EmailVerified: true,
		LastRefresh:   time.Now().Unix(),
	}, ttl)
	if err != nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, LoginResponse{Token: signed, User: user})
}
