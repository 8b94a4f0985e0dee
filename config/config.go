package config

import (
	"os"
	"strconv"

	"water-delivery-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "water_delivery_super_secret_2024"))

// SMTP carries the outbound mail relay settings. An empty host disables
// sending; the dispatcher then only logs what it would have sent.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Mail is loaded once at startup via LoadEnv.
var Mail SMTP

// LoadEnv reads .env (if present) and fills mail settings. A missing .env is
// fine in production where real env vars are set.
func LoadEnv() {
	_ = godotenv.Load()
	port, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	Mail = SMTP{
		Host: os.Getenv("SMTP_HOST"),
		Port: port,
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		From: getEnv("SMTP_FROM", "noreply@aquadrop.example"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	OpenDB(getEnv("DB_PATH", "water_delivery.db"))
}

// OpenDB connects to the given sqlite DSN and migrates the schema. Split out
// from InitDB so tests can point it at an in-memory database.
func OpenDB(dsn string) {
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Subscription{},
		&models.SubscriptionItem{},
		&models.Payment{},
		&models.PromoCode{},
		&models.Notification{},
		&models.Rating{},
		&models.Issue{},
		&models.Branch{},
		&models.PricingRule{},
		&models.BottleReturn{},
		&models.Setting{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	log.Info().Msg("database connected and migrated")
}
