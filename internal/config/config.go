package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gerador/internal/logger"
)

var customLog = logger.NewLogger()

const placeholderSecret = "change-me-in-production"

// Config holds application configuration values.
type Config struct {
	Env                 string
	Port                string
	DatabaseDSN         string
	QueryTimeout        time.Duration
	JWTSecret           string
	JWTExpiration       time.Duration
	RabbitMQURL         string
	RabbitMQExchange    string
	CORSOrigins         string
	SubmitRatePerSecond float64
	SubmitRateBurst     int
	LogLevel            string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from the environment. Outside production a .env
// file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if !strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Error loading .env file: %v", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DSN", "gerador.db")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")
	v.SetDefault("JWT_SECRET", placeholderSecret)
	v.SetDefault("JWT_EXPIRATION", "30m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "forms")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000,http://127.0.0.1:5173")
	v.SetDefault("SUBMIT_RATE_PER_SECOND", 1.0)
	v.SetDefault("SUBMIT_RATE_BURST", 5)
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("APP_PORT"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		QueryTimeout:        v.GetDuration("DB_QUERY_TIMEOUT"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTExpiration:       v.GetDuration("JWT_EXPIRATION"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:    v.GetString("RABBITMQ_EXCHANGE"),
		CORSOrigins:         v.GetString("CORS_ORIGINS"),
		SubmitRatePerSecond: v.GetFloat64("SUBMIT_RATE_PER_SECOND"),
		SubmitRateBurst:     v.GetInt("SUBMIT_RATE_BURST"),
		LogLevel:            v.GetString("LOG_LEVEL"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.JWTSecret == placeholderSecret {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be replaced in production")
		}
		customLog.Warnln("JWT_SECRET is set to the default placeholder")
	}
	if cfg.JWTExpiration <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION, using 30m")
		cfg.JWTExpiration = 30 * time.Minute
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	if !strings.HasPrefix(cfg.Port, ":") && !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	customLog.Infof("Configuration loaded. Env: %s, Port: %s, JWT Exp: %v", cfg.Env, cfg.Port, cfg.JWTExpiration)
	return cfg, nil
}
