package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	StorageDriver  string // "postgres" or "memory"
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string
	CORSOrigins    []string
	RateLimit      string // ulule formatted rate, e.g. "100-M"

	// Kernel policy
	IPRRate           decimal.Decimal
	RoundingMode      domain.RoundingMode
	AllowOverdraft    bool
	ClosingStrictness domain.ClosingStrictness

	ReferenceMaxAttempts int
	TxTimeout            time.Duration
	TxMaxRetries         int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("IPR_RATE", domain.DefaultIPRRate.String())
	v.SetDefault("ROUNDING_MODE", string(domain.RoundHalfEven))
	v.SetDefault("ALLOW_OVERDRAFT", true)
	v.SetDefault("CLOSING_STRICTNESS", string(domain.ClosingStrict))
	v.SetDefault("REFERENCE_MAX_ATTEMPTS", 5)
	v.SetDefault("TX_TIMEOUT", "10s")
	v.SetDefault("TX_MAX_RETRIES", 3)

	v.AutomaticEnv()

	cfg := &Config{
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		AllowOverdraft: v.GetBool("ALLOW_OVERDRAFT"),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, nothing is persisted across restarts.")
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: want postgres or memory", cfg.StorageDriver)
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	rate, err := decimal.NewFromString(v.GetString("IPR_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid IPR_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("invalid IPR_RATE %s: must be within [0, 1]", rate)
	}
	cfg.IPRRate = rate

	switch mode := domain.RoundingMode(strings.ToLower(v.GetString("ROUNDING_MODE"))); mode {
	case domain.RoundHalfEven, domain.RoundHalfUp:
		cfg.RoundingMode = mode
	default:
		return nil, fmt.Errorf("invalid ROUNDING_MODE %q: want half-even or half-up", mode)
	}

	switch strictness := domain.ClosingStrictness(strings.ToLower(v.GetString("CLOSING_STRICTNESS"))); strictness {
	case domain.ClosingStrict, domain.ClosingLenient:
		cfg.ClosingStrictness = strictness
	default:
		return nil, fmt.Errorf("invalid CLOSING_STRICTNESS %q: want strict or lenient", strictness)
	}

	cfg.ReferenceMaxAttempts = v.GetInt("REFERENCE_MAX_ATTEMPTS")
	if cfg.ReferenceMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid REFERENCE_MAX_ATTEMPTS %d: must be at least 1", cfg.ReferenceMaxAttempts)
	}

	cfg.TxTimeout, err = time.ParseDuration(v.GetString("TX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid TX_TIMEOUT: %w", err)
	}

	cfg.TxMaxRetries = v.GetInt("TX_MAX_RETRIES")
	if cfg.TxMaxRetries < 0 {
		cfg.TxMaxRetries = 0
	}

	return cfg, nil
}

// Policy projects the kernel accounting settings.
func (c *Config) Policy() domain.Policy {
	return domain.Policy{
		IPRRate:           c.IPRRate,
		Rounding:          c.RoundingMode,
		AllowOverdraft:    c.AllowOverdraft,
		ClosingStrictness: c.ClosingStrictness,
	}
}
