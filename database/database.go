package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sharmila-j/church-checkin-gateway/config"
)

// Connect opens the gateway's local Postgres database.
// The gateway only persists its own side data here (action history,
// audit trail, notification feed); the congregation's records live in
// the upstream ChMS and are never written locally.
var DB *gorm.DB

func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to database: %v", err))
	}

	log.Println("✅ Database connected")
	DB = db
	return db
}
