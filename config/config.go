package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type LedgerRules struct {
	// EnforceMinimumBalance rejects debits that would take a savings account
	// below its configured minimum balance.
	EnforceMinimumBalance bool
	DefaultPageSize       int
	MaxPageSize           int
}

type Config struct {
	Port           string
	Environment    string
	DatabaseURL    string
	AutoMigrate    bool
	LogLevel       string
	APIKey         string
	AdminAPIKey    string
	JWTSecret      string
	EncryptionKey  string
	AllowOrigins   string
	RateLimitRPS   float64
	RateLimitBurst int
	TokenTTL       time.Duration
	Ledger         LedgerRules
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", "ledger.db"),
		AutoMigrate:    getBool("DB_AUTO_MIGRATE", true),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		APIKey:         getEnv("API_KEY", ""),
		AdminAPIKey:    getEnv("ADMIN_API_KEY", ""),
		JWTSecret:      getEnv("JWT_SECRET", "change-this-jwt-secret-in-production"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", "LedgerGo2025CardVaultKey12345678"),
		AllowOrigins:   getEnv("ALLOW_ORIGINS", "*"),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 50),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		Ledger: LedgerRules{
			EnforceMinimumBalance: getBool("ENFORCE_MINIMUM_BALANCE", true),
			DefaultPageSize:       getInt("DEFAULT_PAGE_SIZE", 100),
			MaxPageSize:           getInt("MAX_PAGE_SIZE", 1000),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate rejects settings the server cannot start with and warns about
// weak ones.
func Validate(cfg *Config) error {
	if len(cfg.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 characters, got %d", len(cfg.EncryptionKey))
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API_KEY must be set")
	}
	if cfg.AdminAPIKey != "" && cfg.AdminAPIKey == cfg.APIKey {
		return fmt.Errorf("ADMIN_API_KEY must differ from API_KEY")
	}
	if cfg.Ledger.DefaultPageSize <= 0 || cfg.Ledger.MaxPageSize < cfg.Ledger.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default=%d max=%d", cfg.Ledger.DefaultPageSize, cfg.Ledger.MaxPageSize)
	}
	if len(cfg.JWTSecret) < 32 {
		log.Printf("WARN: JWT_SECRET should be at least 32 characters for security")
	}
	if cfg.Environment == "production" && cfg.AllowOrigins == "*" {
		log.Printf("WARN: ALLOW_ORIGINS is '*' in production")
	}
	if !cfg.Ledger.EnforceMinimumBalance {
		log.Printf("WARN: minimum balance enforcement is disabled")
	}
	return nil
}
