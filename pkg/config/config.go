package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	AppEnv      string
	BaseURL     string

	// Reports
	OffsetSeconds   int
	DefaultRowLimit int
	ExcludePattern  string
	CatalogFile     string

	// Report cache
	RedisURL       string
	ReportCacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Admin authentication
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	FrontendURL        string
	AllowedEmails      []string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:             getEnv("APP_ENV", "local"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		OffsetSeconds:      hoursToSeconds(getEnvFloat("HOURS_OFFSET", 0)),
		DefaultRowLimit:    getEnvInt("DEFAULT_ROW_LIMIT", 10),
		ExcludePattern:     getEnv("LINK_EXCLUDE_PATTERN", ""),
		CatalogFile:        getEnv("REPORT_CATALOG", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		ReportCacheTTL:     getEnvDuration("REPORT_CACHE_TTL", 10*time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		LogFile:            getEnv("LOG_FILE", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:8080/api/v1/reports"),
		AllowedEmails:      getEnvList("ALLOWED_EMAILS"),
	}
}

// Offset is the fixed UTC offset click times are recorded in.
func (c *Config) Offset() time.Duration {
	return time.Duration(c.OffsetSeconds) * time.Second
}

func hoursToSeconds(hours float64) int {
	return int(hours * 60 * 60)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
