package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const minJWTSecretLength = 16

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	Port               string
	DBURL              string
	JWTSecret          string
	TokenTTLMinutes    int
	CommentMaxLength   int
	MaxImagesPerRating int
	ReadTimeoutSecs    int
	WriteTimeoutSecs   int
	IdleTimeoutSecs    int
	DBMaxConns         int
	DBMinConns         int
	DBMaxIdleSecs      int
	DBMaxLifeSecs      int
	DBConnTimeoutSecs  int
	DBStatementCache   int
}

// IsDev reports whether the process runs with development defaults.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// Load reads configuration from environment variables, applying defaults and validation.
// With APP_ENV=dev a local .env file is read first; real environment variables win.
func Load() (Config, error) {
	if os.Getenv("APP_ENV") == "dev" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:                getEnv("APP_ENV", "production"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Port:               getEnv("PORT", "8080"),
		DBURL:              os.Getenv("DB_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTLMinutes:    getEnvInt("TOKEN_TTL_MINUTES", 24*60),
		CommentMaxLength:   getEnvInt("RATING_COMMENT_MAX_LENGTH", 2000),
		MaxImagesPerRating: getEnvInt("RATING_MAX_IMAGES", 10),
		ReadTimeoutSecs:    getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:   getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:    getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:      getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:      getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:  getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:   getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if err := cfg.validateServing(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase is the reduced loader used by maintenance commands (migrate, seed)
// that never issue tokens or serve requests.
func LoadDatabase() (Config, error) {
	if os.Getenv("APP_ENV") == "dev" {
		_ = godotenv.Load()
	}
	cfg := Config{
		Env:               getEnv("APP_ENV", "production"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DBURL:             os.Getenv("DB_URL"),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 4),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	return cfg, nil
}

func (cfg Config) validateServing() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}
	if cfg.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	if cfg.CommentMaxLength <= 0 {
		return fmt.Errorf("RATING_COMMENT_MAX_LENGTH must be positive")
	}
	if cfg.MaxImagesPerRating <= 0 {
		return fmt.Errorf("RATING_MAX_IMAGES must be positive")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
