package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/vidtube/internal/models"
)

type Config struct {
	SERVER_ADDRESS string
	LOG_LEVEL      string

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	JWT_SECRET     string
	REFRESH_SECRET string

	MINIO_ENDPOINT   string
	MINIO_ACCESS_KEY string
	MINIO_SECRET_KEY string
	MINIO_BUCKET     string
	MINIO_USE_SSL    string

	KAFKA_ADDRESS string
	KAFKA_TOPIC   string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		SERVER_ADDRESS: os.Getenv("SERVER_ADDRESS"),
		LOG_LEVEL:      os.Getenv("LOG_LEVEL"),

		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),

		MINIO_ENDPOINT:   os.Getenv("MINIO_ENDPOINT"),
		MINIO_ACCESS_KEY: os.Getenv("MINIO_ACCESS_KEY"),
		MINIO_SECRET_KEY: os.Getenv("MINIO_SECRET_KEY"),
		MINIO_BUCKET:     os.Getenv("MINIO_BUCKET"),
		MINIO_USE_SSL:    os.Getenv("MINIO_USE_SSL"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		KAFKA_TOPIC:   os.Getenv("KAFKA_TOPIC"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
		ES_INDEX:    os.Getenv("ES_INDEX"),
	}

	if config.JWT_SECRET == "" || config.REFRESH_SECRET == "" {
		return nil, errors.New("JWT_SECRET and REFRESH_SECRET are required")
	}

	if config.SERVER_ADDRESS == "" {
		config.SERVER_ADDRESS = ":8080"
	}
	if config.KAFKA_TOPIC == "" {
		config.KAFKA_TOPIC = "user_events"
	}
	if config.ES_INDEX == "" {
		config.ES_INDEX = "channels"
	}

	return config, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Subscription{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
