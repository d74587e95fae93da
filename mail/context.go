package mail

import "github.com/gin-gonic/gin"

const senderKey = "mail_sender"

// SetSenderToContext exposes the mail sender to handlers, same mechanism
// as the database injection in db/context.go.
func SetSenderToContext(sender Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(senderKey, sender)
		c.Next()
	}
}

func SenderInstance(c *gin.Context) Sender {
	v, ok := c.Get(senderKey)
	if !ok {
		return nil
	}
	sender, _ := v.(Sender)
	return sender
}
