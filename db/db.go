package db

import (
	"log"
	"os"

	"factura/config"
	"factura/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var conf config.Configuration

func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

// Connect opens the database (sqlite3 by default) and runs the basic
// automigrate when AUTOMIGRATE=1 is exported.
func Connect() (*gorm.DB, error) {
	database := conf.Database
	if database == "" {
		database = "sqlite3"
	}

	var (
		db  *gorm.DB
		err error
	)

	if database == "postgres" || database == "postgresql" {
		log.Println("Using postgresql connection...")
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass
		db, err = gorm.Open("postgres", path)
	} else {
		log.Println("Using sqlite3 connection...")
		db, err = gorm.Open("sqlite3", "db/database.db")
	}

	if err != nil {
		log.Println("Got error when connect database, the error is: " + err.Error())
		return nil, err
	}

	if getenv("AUTOMIGRATE", "0") == "1" {
		AutoMigrate(db)
	}

	return db, nil
}

// AutoMigrate creates/updates the schema for every model.
func AutoMigrate(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.PasswordReset{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
