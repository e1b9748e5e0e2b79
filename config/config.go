package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string
	ClientURL      string
	AppSecret      string
	TokenExpiresIn time.Duration

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPass     string
	DBName     string
	DBPort     string
	SqlitePath string

	UploadDir      string
	GoogleClientID string
	Debug          bool
}

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

// LoadEnv loads variables from envFile into the process environment. A
// missing file is not an error: the system environment is used instead.
func LoadEnv(envFile string) bool {
	if envFile == "" {
		envFile = ".env"
	}
	return godotenv.Load(envFile) == nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           getenv("APP_PORT", "3001"),
		ClientURL:      getenv("CLIENT_URL", "http://localhost:3000"),
		AppSecret:      os.Getenv("APP_SECRET"),
		DBDriver:       getenv("DB_DRIVER", DriverPostgres),
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         getenv("DB_PORT", "5432"),
		SqlitePath:     getenv("SQLITE_PATH", "ecohub.db"),
		UploadDir:      getenv("UPLOAD_DIR", "public/uploads"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
	}

	if cfg.AppSecret == "" {
		return nil, fmt.Errorf("APP_SECRET is missing")
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_EXPIRES_IN: %w", err)
	}
	cfg.TokenExpiresIn = ttl

	if v := os.Getenv("LOG_DEBUG"); v != "" {
		cfg.Debug, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_DEBUG: %w", err)
		}
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("DATABASE ENV MISSING: DB_HOST, DB_USER and DB_NAME are required for postgres")
		}
	case DriverSqlite:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// PostgresDSN builds the key/value DSN expected by the pgx driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
