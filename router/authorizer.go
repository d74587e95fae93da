package router

import (
	"net/http"

	"factura/controllers"

	"github.com/gin-gonic/gin"
)

// Authorizer blocks protected routes until the account's email is
// confirmed. Verification is re-read from the user row loaded by
// AuthRequired on this same request, never from the token.
func Authorizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, controllers.ErrMsgUnauthorized, http.StatusUnauthorized)
			c.Abort()
			return
		}

		if !user.IsVerified() {
			controllers.RespondError(c, "email verification required", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
