package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"factura/config"
	dbpkg "factura/db"
	"factura/mail"
	"factura/router"
	"factura/token"

	"github.com/gin-gonic/gin"
)

// Expected environment:
//
// Server
// - PORT                (default 8080)
// - APP_URL             (base URL used in password-reset links)
// - JWT_SECRET          (required; the token signing key)
//
// SMTP (verification codes and reset links)
// - SMTP_HOST / SMTP_PORT / SMTP_USER / SMTP_PASS
//
// Database
// - AUTOMIGRATE=1       (run schema automigrate on boot, dev only)
//
// Everything else can live in config.json (see config.Configuration).

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	conf := config.Get(configPath)

	dbpkg.SetConfigurations(conf)
	database, err := dbpkg.Connect()
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer database.Close()

	signer := token.NewSigner(conf.Security.JwtSecret)
	sender := mail.NewSMTPSender(conf.SMTP.Host, conf.SMTP.Port, conf.SMTP.User, conf.SMTP.Pass, conf.SMTP.From)

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	r.Use(config.SetToContext(conf))
	r.Use(token.SetSignerToContext(signer))
	r.Use(mail.SetSenderToContext(sender))

	router.Initialize(r, conf)

	srv := &http.Server{
		Addr:              ":" + conf.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Factura listening on :%s", conf.ApiPort)
	log.Fatal(srv.ListenAndServe())
}
