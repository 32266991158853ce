package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/models"
	"github.com/avdeyev/webshop/pkg/db"
)

type Config struct {
	HTTP_ADDR      string
	DATABASE_URL   string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	ES_INDEX       string
	JWT_SECRET     string
	REFRESH_SECRET string
	KAFKA_ADDRESS  string
	LOG_LEVEL      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:      getDefault("HTTP_ADDR", ":8080"),
		DATABASE_URL:   os.Getenv("DATABASE_URL"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		ES_INDEX:       getDefault("ES_INDEX", "product"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		LOG_LEVEL:      getDefault("LOG_LEVEL", "info"),
	}

	if config.JWT_SECRET == "" || config.REFRESH_SECRET == "" {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_SECRET must be set")
	}

	return config, nil
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, cfg.DATABASE_URL)
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.RefreshToken{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return gdb, nil
}
