package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	AppURL  string `json:"app_url"` // base URL used in password-reset links

	Database string `json:"database"` // "sqlite3" or "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	Security struct {
		JwtSecret              string `json:"jwt_secret"`
		CodeLen                int    `json:"code_len"`
		CodeTTLMinutes         int    `json:"code_ttl_minutes"`
		VerifySessionTTLMin    int    `json:"verify_session_ttl_minutes"`
		SessionTTLMinutes      int    `json:"session_ttl_minutes"`
		SessionRefreshAfterMin int    `json:"session_refresh_after_minutes"`
		ResetTokenTTLMinutes   int    `json:"reset_token_ttl_minutes"`
		ResendCooldownSeconds  int    `json:"resend_cooldown_seconds"`
	} `json:"security"`

	SMTP struct {
		Host string `json:"host"`
		Port string `json:"port"`
		User string `json:"user"`
		Pass string `json:"pass"`
		From string `json:"from"`
	} `json:"smtp"`
}

// Get loads the configuration file and applies defaults plus env
// overrides. Secrets (signing key, SMTP credentials) are expected from
// the environment; the file only carries them for local development.
func Get(path string) Configuration {
	var c Configuration

	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &c); err != nil {
			log.Fatal(err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatal(err)
	}

	// env overrides
	if v := os.Getenv("PORT"); v != "" {
		c.ApiPort = v
	}
	if v := os.Getenv("APP_URL"); v != "" {
		c.AppURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Security.JwtSecret = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		c.SMTP.Port = v
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.SMTP.User = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.SMTP.Pass = v
	}

	c.ApplyDefaults()

	// The signing key must come from the operator; refusing to start is
	// better than signing with a known default.
	if c.Security.JwtSecret == "" {
		log.Fatal("JWT_SECRET not set (env or config file)")
	}

	return c
}

// ApplyDefaults fills in every zero-valued knob. Get calls it after the
// file/env merge; tests call it on hand-built configurations.
func (c *Configuration) ApplyDefaults() {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.AppURL == "" {
		c.AppURL = "http://localhost:" + c.ApiPort
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Security.CodeLen <= 0 {
		c.Security.CodeLen = 6
	}
	if c.Security.CodeTTLMinutes <= 0 {
		c.Security.CodeTTLMinutes = 10
	}
	if c.Security.VerifySessionTTLMin <= 0 {
		c.Security.VerifySessionTTLMin = 10
	}
	if c.Security.SessionTTLMinutes <= 0 {
		c.Security.SessionTTLMinutes = 30
	}
	if c.Security.SessionRefreshAfterMin <= 0 {
		c.Security.SessionRefreshAfterMin = 5
	}
	if c.Security.ResetTokenTTLMinutes <= 0 {
		c.Security.ResetTokenTTLMinutes = 30
	}
	if c.Security.ResendCooldownSeconds <= 0 {
		c.Security.ResendCooldownSeconds = 60
	}
}
