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

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Atelier  AtelierConfig
	Escrow   EscrowConfig
	Policy   PolicyConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AtelierConfig identifies the house on generated documents and payment
// instructions.
type AtelierConfig struct {
	Name          string
	Director      string
	Address       string
	BankIBAN      string
	AdminEmail    string
	AdminPassword string
}

type EscrowConfig struct {
	DisputeWindow time.Duration
	SweepSchedule string // cron expression for the dispute-window sweeper
}

// PolicyConfig holds the commercial parameters of the platform.
type PolicyConfig struct {
	ResalePlatformFeePct float64 // fee on negotiated resales, percent of offered price
	ServiceUpliftPct     float64 // share of a service record's cost added to valuation, percent
	DefaultDepositPct    float64 // deposit percentage applied when a piece carries none
}

// ArchiveConfig configures the S3 bucket generated documents are
// archived to. Disabled by default so local development needs no AWS
// credentials.
type ArchiveConfig struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string
	Enabled         bool
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "vault"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Atelier: AtelierConfig{
			Name:          getEnv("ATELIER_NAME", "Antonio Bellanova Atelier"),
			Director:      getEnv("ATELIER_DIRECTOR", "Antonio Bellanova"),
			Address:       getEnv("ATELIER_ADDRESS", "Aaronstrasse 8, 50676 Koeln, Deutschland"),
			BankIBAN:      getEnv("ATELIER_IBAN", "DE35 2022 0800 0056 5751 78"),
			AdminEmail:    getEnv("ATELIER_ADMIN_EMAIL", "admin@bellanova.com"),
			AdminPassword: getEnv("ATELIER_ADMIN_PASSWORD", "admin123"),
		},
		Escrow: EscrowConfig{
			DisputeWindow: parseDuration(getEnv("ESCROW_DISPUTE_WINDOW", "48h"), 48*time.Hour),
			SweepSchedule: getEnv("ESCROW_SWEEP_SCHEDULE", "0 * * * *"),
		},
		Policy: PolicyConfig{
			ResalePlatformFeePct: parseFloat(getEnv("RESALE_PLATFORM_FEE_PCT", "5"), 5),
			ServiceUpliftPct:     parseFloat(getEnv("SERVICE_VALUATION_UPLIFT_PCT", "50"), 50),
			DefaultDepositPct:    parseFloat(getEnv("DEFAULT_DEPOSIT_PCT", "10"), 10),
		},
		Archive: ArchiveConfig{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "bellanova-vault-documents"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			Enabled:         getEnv("DOCUMENT_ARCHIVE_ENABLED", "false") == "true",
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
