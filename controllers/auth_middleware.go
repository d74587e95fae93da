package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"factura/config"
	dbpkg "factura/db"
	"factura/models"
	"factura/token"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "auth_user"

// RefreshedTokenHeader carries a re-signed session token back to the
// client when the sliding refresh fires. The absolute expiry never moves;
// only the last-activity marker does.
const RefreshedTokenHeader = "X-Session-Token"

// AuthRequired validates the Bearer session token and loads the user from
// the DB into the context. Verification state is re-read from the store on
// every request; nothing is cached in-process.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			RespondError(c, ErrMsgUnauthorized, http.StatusUnauthorized)
			c.Abort()
			return
		}
		raw := strings.TrimSpace(h[len("Bearer "):])

		signer := token.SignerInstance(c)
		if signer == nil {
			RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
			c.Abort()
			return
		}
		claims, err := signer.Verify(raw, token.PurposeSession)
		if err != nil {
			RespondError(c, ErrMsgInvalidSession, http.StatusUnauthorized)
			c.Abort()
			return
		}

		db := dbpkg.DBInstance(c)
		if db == nil {
			RespondError(c, ErrMsgInternal, http.StatusInternalServerError)
			c.Abort()
			return
		}
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			RespondError(c, ErrMsgUnauthorized, http.StatusUnauthorized)
			c.Abort()
			return
		}

		conf := config.Instance(c)
		refreshAfter := time.Duration(conf.Security.SessionRefreshAfterMin) * time.Minute
		if time.Since(time.Unix(claims.LastRefresh, 0)) > refreshAfter {
			refreshed, err := signer.Refresh(*claims)
			if err != nil {
				log.Printf("session: refresh failed user_id=%s err=%v", user.ID, err)
			} else {
				c.Header(RefreshedTokenHeader, refreshed)
			}
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// GetUserLogged returns the user loaded by AuthRequired.
func GetUserLogged(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
