package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bullion/internal/ledger"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Ledger
	TrackedCurrencies []string
	PrimaryCurrency   string
	ExcludedTypes     []string
	UnknownCurrency   ledger.UnknownCurrencyPolicy

	// Statement cache
	StatementCacheSize int
	StatementCacheTTL  time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "bullion"),
		DBPassword: getEnv("DB_PASSWORD", "bullion"),
		DBName:     getEnv("DB_NAME", "bullion"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		TrackedCurrencies: splitList(getEnv("LEDGER_TRACKED_CURRENCIES", "AED,INR,XAU")),
		PrimaryCurrency:   ledger.NormalizeCurrency(getEnv("LEDGER_PRIMARY_CURRENCY", "AED")),
		ExcludedTypes:     splitList(getEnv("LEDGER_EXCLUDED_TYPES", "CURRENCY_EXCHANGE,VAT,GOLD_ADJUSTMENT")),
	}

	policyStr := getEnv("LEDGER_UNKNOWN_CURRENCY", "ignore")
	policy, err := ledger.ParseUnknownCurrencyPolicy(policyStr)
	if err != nil {
		log.Printf("Warning: invalid LEDGER_UNKNOWN_CURRENCY value '%s', falling back to ignore\n", policyStr)
		policy = ledger.UnknownIgnore
	}
	config.UnknownCurrency = policy

	sizeStr := getEnv("STATEMENT_CACHE_SIZE", "256")
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 0 {
		log.Printf("Warning: invalid STATEMENT_CACHE_SIZE value '%s', falling back to 256\n", sizeStr)
		size = 256
	}
	config.StatementCacheSize = size

	ttlStr := getEnv("STATEMENT_CACHE_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		log.Printf("Warning: invalid STATEMENT_CACHE_TTL value '%s', falling back to 5m\n", ttlStr)
		ttl = 5 * time.Minute
	}
	config.StatementCacheTTL = ttl

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// LedgerOptions builds the aggregation options for the configured ledger.
func (c *Config) LedgerOptions() ledger.Options {
	return ledger.Options{
		TrackedCurrencies: c.TrackedCurrencies,
		Exclude:           ledger.ExcludeTypes(c.ExcludedTypes...),
		FallbackCurrency:  c.PrimaryCurrency,
		UnknownCurrency:   c.UnknownCurrency,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
