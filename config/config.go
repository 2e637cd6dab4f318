// config/config.go - Environment configuration
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins string

	RateLimitEnabled    bool
	RateLimitMax        int
	RateLimitWindow     time.Duration
	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration
	RequestTimeout      time.Duration
	AchievementCacheTTL time.Duration
	GoalResetSchedule   string
	CacheSweepSchedule  string
	FunctionsURL        string
	FunctionsKey        string
	FunctionsTimeout    time.Duration
	SeedAdminEmail      string
	SeedAdminPassword   string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return FromViper(newViper())
}

// LoadForTools is Load for command line tools that only need the database
// and logging settings.
func LoadForTools() (*Config, error) {
	_ = godotenv.Load()
	cfg := parse(newViper())
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "muslimlife")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "./data/muslimlife.db")
	v.SetDefault("JWT_TTL", 72*time.Hour)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", 15*time.Minute)
	v.SetDefault("AUTH_RATE_LIMIT_MAX", 5)
	v.SetDefault("AUTH_RATE_LIMIT_WINDOW", 5*time.Minute)
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("ACHIEVEMENT_CACHE_TTL", 30*time.Second)
	v.SetDefault("GOAL_RESET_SCHEDULE", "0 0 * * *")
	v.SetDefault("CACHE_SWEEP_SCHEDULE", "@every 1m")
	v.SetDefault("FUNCTIONS_TIMEOUT", 15*time.Second)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := parse(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(v *viper.Viper) *Config {
	dsn := v.GetString("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			v.GetString("DB_HOST"), v.GetString("DB_PORT"), v.GetString("DB_USER"),
			v.GetString("DB_PASSWORD"), v.GetString("DB_NAME"), v.GetString("DB_SSLMODE"))
	}

	return &Config{
		Env:                 strings.ToLower(v.GetString("APP_ENV")),
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DBDriver:            strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:         dsn,
		SQLitePath:          v.GetString("SQLITE_PATH"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTTTL:              v.GetDuration("JWT_TTL"),
		CORSOrigins:         v.GetString("CORS_ORIGINS"),
		RateLimitEnabled:    v.GetBool("RATE_LIMIT_ENABLED"),
		RateLimitMax:        v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitWindow:     v.GetDuration("RATE_LIMIT_WINDOW"),
		AuthRateLimitMax:    v.GetInt("AUTH_RATE_LIMIT_MAX"),
		AuthRateLimitWindow: v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		AchievementCacheTTL: v.GetDuration("ACHIEVEMENT_CACHE_TTL"),
		GoalResetSchedule:   v.GetString("GOAL_RESET_SCHEDULE"),
		CacheSweepSchedule:  v.GetString("CACHE_SWEEP_SCHEDULE"),
		FunctionsURL:        strings.TrimRight(v.GetString("FUNCTIONS_URL"), "/"),
		FunctionsKey:        v.GetString("FUNCTIONS_KEY"),
		FunctionsTimeout:    v.GetDuration("FUNCTIONS_TIMEOUT"),
		SeedAdminEmail:      v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword:   v.GetString("SEED_ADMIN_PASSWORD"),
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set. Generate one with: openssl rand -base64 64")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.AchievementCacheTTL <= 0 {
		return errors.New("ACHIEVEMENT_CACHE_TTL must be positive")
	}
	return nil
}

// ValidateStorage checks the settings shared by the server and the tools.
func (c *Config) ValidateStorage() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return errors.Errorf("APP_ENV must be one of: development, staging, production, test (got %q)", c.Env)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("DB_DRIVER must be postgres or sqlite (got %q)", c.DBDriver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
