package controllers

import (
	"net/http"
	"time"

	"factura/config"
	dbpkg "factura/db"
	"factura/models"
	"factura/token"
	"factura/tools"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type RegisterResponse struct {
	Message                  string    `json:"message"`
	VerificationSessionToken string    `json:"verificationSessionToken"`
	VerificationExpires      time.Time `json:"verificationExpires"`
}

// Register creates the account unverified, issues a one-time code and
// hands back a verification-session token so the client can reach the
// code-entry screen without re-authenticating.
//
// Mail delivery is best-effort: a failed send is logged but the user and
// code rows stay committed. Logging in with the correct password rotates
// and re-sends the code, which is the recovery path.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    models.NormalizeEmail(req.Email),
		Password: req.Password,
	}
	if missing := user.MissingFields(); missing != "" {
		RespondError(c, "missing or invalid field: "+missing, http.StatusBadRequest)
		return
	}
	if !tools.ValidateEmail(user.Email) {
		RespondError(c, "invalid email", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}

	var existing models.User
	if err := db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		RespondError(c, ErrMsgDuplicateAccount, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	user.ID = uuid.NewString()
	user.Password = string(hash)
	user.EmailVerified = nil

	conf := config.Instance(c)

	tx := db.Begin()
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
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

	RespondSuccess(c, RegisterResponse{
		Message:                  "verification code sent",
		VerificationSessionToken: sessionToken,
		VerificationExpires:      expires,
	})
}

func issueVerifySession(c *gin.Context, user models.User, conf config.Configuration) (string, error) {
	signer := token.SignerInstance(c)
	ttl := time.Duration(conf.Security.VerifySessionTTLMin) * time.Minute
	return signer.Issue(token.Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: token.PurposeVerifySession,
	}, ttl)
}
