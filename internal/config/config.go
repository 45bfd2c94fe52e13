package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ozo-extended/ozo-agent/internal/pkg/validator"
)

type Config struct {
	App       AppConfig
	JWT       JWTConfig
	Auth      AuthConfig
	History   HistoryConfig
	Portal    PortalConfig
	Scheduler SchedulerConfig
	Holiday   HolidayConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Host           string
	Port           int
	Env            string
	LogLevel       string
	DataDir        string
	AllowedOrigins []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AuthConfig holds the local UI secret
type AuthConfig struct {
	// ClientSecretHash is a bcrypt hash. Empty means a generated secret file is used.
	ClientSecretHash string
}

type HistoryConfig struct {
	// DatabaseURL selects PostgreSQL when set; SQLite in DataDir otherwise.
	DatabaseURL string
	Retention   time.Duration
}

type PortalConfig struct {
	BaseURL        string
	BrowserChannel string
}

type SchedulerConfig struct {
	FetchInterval       time.Duration
	ResetBuffer         time.Duration
	ResumeDelay         time.Duration
	ResumeCheckInterval time.Duration
	AutoClockInMinHour  int
}

type HolidayConfig struct {
	Calendar string
	Dates    []time.Time
}

func Load() (*Config, error) {
	// .env is optional for a desktop agent.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "47615"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine DATA_DIR: %w", err)
		}
		dataDir = filepath.Join(base, "ozo-agent")
	}

	config.App = AppConfig{
		Host:           getEnv("APP_HOST", "127.0.0.1"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DataDir:        dataDir,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	accessExpiration, err := getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", "24h")
	if err != nil {
		return nil, err
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	config.Auth = AuthConfig{
		ClientSecretHash: getEnv("CLIENT_SECRET_HASH", ""),
	}

	retentionDays, err := strconv.Atoi(getEnv("HISTORY_RETENTION_DAYS", "400"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_RETENTION_DAYS: %w", err)
	}
	config.History = HistoryConfig{
		DatabaseURL: getEnv("HISTORY_DATABASE_URL", ""),
		Retention:   time.Duration(retentionDays) * 24 * time.Hour,
	}

	config.Portal = PortalConfig{
		BaseURL:        strings.TrimRight(getEnv("PORTAL_BASE_URL", "https://manage.ozo-cloud.jp"), "/"),
		BrowserChannel: getEnv("BROWSER_CHANNEL", "msedge"),
	}

	// Scheduler configuration
	if config.Scheduler.FetchInterval, err = getEnvDuration("FETCH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if config.Scheduler.ResetBuffer, err = getEnvDuration("RESET_BUFFER", "1s"); err != nil {
		return nil, err
	}
	if config.Scheduler.ResumeDelay, err = getEnvDuration("RESUME_DELAY", "5s"); err != nil {
		return nil, err
	}
	if config.Scheduler.ResumeCheckInterval, err = getEnvDuration("RESUME_CHECK_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if config.Scheduler.AutoClockInMinHour, err = strconv.Atoi(getEnv("AUTO_CLOCK_IN_MIN_HOUR", "6")); err != nil {
		return nil, fmt.Errorf("invalid AUTO_CLOCK_IN_MIN_HOUR: %w", err)
	}

	holidays, errs := validator.ParseDateList(getEnv("HOLIDAY_DATES", ""))
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid HOLIDAY_DATES: %w", errs)
	}
	config.Holiday = HolidayConfig{
		Calendar: getEnv("HOLIDAY_CALENDAR", "jp"),
		Dates:    holidays,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	if c.History.Retention < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative")
	}
	if !strings.HasPrefix(c.Portal.BaseURL, "https://") && !strings.HasPrefix(c.Portal.BaseURL, "http://") {
		return fmt.Errorf("PORTAL_BASE_URL must be an http(s) URL")
	}
	if c.Scheduler.FetchInterval < time.Minute {
		return fmt.Errorf("FETCH_INTERVAL must be at least 1m")
	}
	if c.Scheduler.ResumeCheckInterval <= 0 {
		return fmt.Errorf("RESUME_CHECK_INTERVAL must be positive")
	}
	if c.Scheduler.AutoClockInMinHour < 1 || c.Scheduler.AutoClockInMinHour > 23 {
		return fmt.Errorf("AUTO_CLOCK_IN_MIN_HOUR must be between 1 and 23")
	}
	if c.Holiday.Calendar != "jp" && c.Holiday.Calendar != "none" {
		return fmt.Errorf("HOLIDAY_CALENDAR must be jp or none")
	}
	return nil
}

// Addr is the loopback listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) SettingsPath() string { return filepath.Join(c.App.DataDir, "config.json") }

func (c *Config) ProfileDir() string { return filepath.Join(c.App.DataDir, "ozo_edge_session") }

func (c *Config) HistoryDBPath() string { return filepath.Join(c.App.DataDir, "history.db") }

func (c *Config) SecretPath() string { return filepath.Join(c.App.DataDir, "client-secret") }

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.App.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
