package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr       string
	DatabaseDriver string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	Location       *time.Location
	LogLevel       string

	TelegramToken string // bot is disabled when empty
	TelegramDebug bool

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

var instance *Config
var once sync.Once

// Get loads the configuration once. A missing .env file is not an error.
func Get() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Info("no .env file, using process environment")
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", "sqlite")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "team-portal.db")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		return nil, errMissing("JWT_SECRET")
	}

	ttl := getEnvAsInt("TOKEN_TTL_HOURS", 24)
	if ttl <= 0 {
		ttl = 24
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Hour

	tz := getEnv("TIMEZONE", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logrus.WithError(err).Warnf("unknown timezone %q, using UTC", tz)
		loc = time.UTC
	}
	cfg.Location = loc

	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramDebug = getEnvAsBool("TELEGRAM_DEBUG", false)

	cfg.AdminUsername = getEnv("ADMIN_USERNAME", "")
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")

	return cfg, nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// AdminConfigured reports whether a bootstrap administrator was configured.
func (c *Config) AdminConfigured() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

type missingError string

func (e missingError) Error() string {
	return "required variable " + string(e) + " is not set"
}

func errMissing(key string) error {
	return missingError(key)
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return int64(val)
	}

	return defaultVal
}
