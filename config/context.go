package config

import "github.com/gin-gonic/gin"

const configKey = "config"

// SetToContext exposes the loaded configuration to handlers, same
// mechanism as the database injection in db/context.go.
func SetToContext(conf Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(configKey, conf)
		c.Next()
	}
}

func Instance(c *gin.Context) Configuration {
	v, ok := c.Get(configKey)
	if !ok {
		return Configuration{}
	}
	conf, _ := v.(Configuration)
	return conf
}
