package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/email"
	"github.com/ChauShunWai/node-shop/models"
	"github.com/ChauShunWai/node-shop/payments"
	"github.com/ChauShunWai/node-shop/routes"
	"github.com/ChauShunWai/node-shop/storage"
)

func main() {
	log.Println("Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// Collaborators
	gateway, err := payments.NewClient()
	if err != nil {
		log.Fatalf("Payment gateway init failed: %v", err)
	}
	store, err := storage.NewGCS(context.Background(), os.Getenv("GCS_BUCKET"))
	if err != nil {
		log.Fatalf("Blob storage init failed: %v", err)
	}
	mailer := email.NewSendGrid(os.Getenv("SENDGRID_API_KEY"), os.Getenv("MAIL_FROM"))

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, db, gateway, store, mailer)

	// Purge expired password-reset tokens at 2 AM daily
	go startDailyResetTokenPurge(db, 2, 0)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}
	return db
}

// startDailyResetTokenPurge clears stale reset tokens once a day at a
// fixed hour so expired links cannot linger in the users table.
func startDailyResetTokenPurge(db *gorm.DB, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		log.Printf("Next reset-token purge scheduled at: %s", next.Format("2006-01-02 15:04:05"))
		time.Sleep(next.Sub(now))

		result := db.Model(&models.User{}).
			Where("reset_token <> '' AND reset_token_expiry < ?", time.Now()).
			Updates(map[string]interface{}{
				"reset_token":        "",
				"reset_token_expiry": nil,
			})
		if result.Error != nil {
			log.Printf("Reset-token purge failed: %v", result.Error)
		} else if result.RowsAffected > 0 {
			log.Printf("Purged %d expired reset tokens", result.RowsAffected)
		}
	}
}
