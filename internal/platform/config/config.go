package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	APIPort        string
	ClientJWTKey   []byte
	ClientJWTExp   time.Duration
	StoreSecret    []byte
	ProblemBaseURL string

	SyncTierDriver  string
	LocalTierDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	SQLitePath string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	GitHubAPIURL      string
	KeepAliveInterval time.Duration
}

// Load reads .env (if present) and the environment. The result is passed
// explicitly to everything that needs it.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:           getEnv("API_PORT", "8787"),
		ClientJWTKey:      []byte(getEnv("CLIENT_JWT_SECRET", "defaultsecret")),
		ClientJWTExp:      time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24*30)) * time.Hour,
		StoreSecret:       []byte(getEnv("STORE_SECRET", "defaultstoresecret")),
		ProblemBaseURL:    getEnv("PROBLEM_BASE_URL", "https://leetcode.com/problems/"),
		SyncTierDriver:    getEnv("SYNC_TIER_DRIVER", DriverSQLite),
		LocalTierDriver:   getEnv("LOCAL_TIER_DRIVER", DriverSQLite),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "user"),
		DBPassword:        getEnv("DB_PASSWORD", "password"),
		DBName:            getEnv("DB_NAME", "leet2git"),
		DBSslMode:         getEnv("DB_SSLMODE", "disable"),
		SQLitePath:        getEnv("SQLITE_PATH", DefaultDBPath()),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RedisKeyPrefix:    getEnv("REDIS_KEY_PREFIX", "leet2git:"),
		GitHubAPIURL:      getEnv("GITHUB_API_URL", ""),
		KeepAliveInterval: time.Duration(getEnvAsInt("KEEPALIVE_INTERVAL_SECONDS", 20)) * time.Second,
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

// ServerURL is the base URL clients on this host use to reach the server.
func (c *Config) ServerURL() string {
	return "http://localhost:" + c.APIPort
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "leet2git", "leet2git.db")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
