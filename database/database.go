package database

import (
	"fmt"
	"log"
	"os"

	"contest-app/internal/domain/billing"
	"contest-app/internal/domain/community"
	"contest-app/internal/domain/products"
	"contest-app/internal/domain/users"
	"contest-app/internal/domain/votes"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},
		&billing.PaymentRecord{},

		// contest
		&products.Product{},
		&votes.Vote{},
		&community.Community{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	fmt.Println("Connected and migrated successfully")
}
