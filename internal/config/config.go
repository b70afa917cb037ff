package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration for the dashboard session tokens
	JWT JWTConfig

	// Twilio SMS configuration
	Twilio TwilioConfig

	// Slack configuration
	Slack SlackConfig

	// Form provider (webhook) configuration
	Form FormConfig

	// Notification dispatch configuration
	Notifications NotificationConfig

	// Admin dashboard configuration
	Admin AdminConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// TwilioConfig holds Twilio SMS gateway configuration
type TwilioConfig struct {
	Mode       string // "dev" logs messages instead of sending, "production" sends real SMS
	AccountSID string
	AuthToken  string
	FromNumber string // E.164 sender number
	APIURL     string
}

// SlackConfig holds Slack Web API configuration
type SlackConfig struct {
	BotToken      string
	ChannelID     string
	SigningSecret string
	APIURL        string
}

// FormConfig holds form provider webhook configuration
type FormConfig struct {
	FormID        string
	WebhookSecret string
}

// NotificationConfig holds dispatch behaviour configuration
type NotificationConfig struct {
	ChannelTimeout time.Duration // per-channel send timeout
}

// AdminConfig holds dashboard login configuration
type AdminConfig struct {
	Email        string
	PasswordHash string // bcrypt hash of the dashboard password
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		Twilio: TwilioConfig{
			Mode:       getEnv("SMS_MODE", "dev"), // "dev" or "production"
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
			APIURL:     getEnv("TWILIO_API_URL", "https://api.twilio.com/2010-04-01"),
		},
		Slack: SlackConfig{
			BotToken:      getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
			APIURL:        getEnv("SLACK_API_URL", "https://slack.com/api"),
		},
		Form: FormConfig{
			FormID:        getEnv("FORM_ID", ""),
			WebhookSecret: getEnv("FORM_WEBHOOK_SECRET", ""),
		},
		Notifications: NotificationConfig{
			ChannelTimeout: time.Duration(getEnvAsInt("NOTIFICATION_CHANNEL_TIMEOUT", 10)) * time.Second,
		},
		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment != "development" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required outside development mode")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	// Twilio credentials are only mandatory when real SMS delivery is on
	if c.Twilio.Mode == "production" {
		if c.Twilio.AccountSID == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID is required in production SMS mode")
		}
		if c.Twilio.AuthToken == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN is required in production SMS mode")
		}
		if c.Twilio.FromNumber == "" {
			return fmt.Errorf("TWILIO_PHONE_NUMBER is required in production SMS mode")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
