package token

import "github.com/gin-gonic/gin"

const signerKey = "token_signer"

// SetSignerToContext exposes the signer to handlers, same mechanism as
// the database injection in db/context.go.
func SetSignerToContext(signer *Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(signerKey, signer)
		c.Next()
	}
}

func SignerInstance(c *gin.Context) *Signer {
	v, ok := c.Get(signerKey)
	if !ok {
		return nil
	}
	signer, _ := v.(*Signer)
	return signer
}
