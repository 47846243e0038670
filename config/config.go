package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr       string        `mapstructure:"http_addr"`
	DatabaseURL    string        `mapstructure:"database_url"`
	DBMaxOpenConns int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns int           `mapstructure:"db_max_idle_conns"`
	MigrateOnStart bool          `mapstructure:"migrate_on_start"`
	LogLevel       string        `mapstructure:"log_level"`
	CORSOrigins    []string      `mapstructure:"cors_origin"`
	JWT            JWTConfig     `mapstructure:"jwt"`
	Codes          CodesConfig   `mapstructure:"codes"`
	Mail           MailConfig    `mapstructure:"mail"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

type CodesConfig struct {
	HashSecret      string        `mapstructure:"hash_secret"`
	RegistrationTTL time.Duration `mapstructure:"registration_ttl"`
	LoginTTL        time.Duration `mapstructure:"login_ttl"`
	ResetTTL        time.Duration `mapstructure:"reset_ttl"`
	EmailChangeTTL  time.Duration `mapstructure:"email_change_ttl"`
}

type MailConfig struct {
	From          string        `mapstructure:"from"`
	ResendAPIKey  string        `mapstructure:"resend_api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

var envBindings = map[string]string{
	"http_addr":              "HTTP_ADDR",
	"database_url":           "DATABASE_URL",
	"db_max_open_conns":      "DB_MAX_OPEN_CONNS",
	"db_max_idle_conns":      "DB_MAX_IDLE_CONNS",
	"migrate_on_start":       "MIGRATE_ON_START",
	"log_level":              "LOG_LEVEL",
	"cors_origin":            "CORS_ORIGIN",
	"bcrypt_cost":            "BCRYPT_COST",
	"shutdown_grace":         "SHUTDOWN_GRACE",
	"jwt.secret":             "JWT_SECRET",
	"jwt.issuer":             "JWT_ISSUER",
	"jwt.expires_in":         "JWT_EXPIRES_IN",
	"codes.hash_secret":      "CODE_HASH_SECRET",
	"codes.registration_ttl": "CODE_REGISTRATION_TTL",
	"codes.login_ttl":        "CODE_LOGIN_TTL",
	"codes.reset_ttl":        "CODE_RESET_TTL",
	"codes.email_change_ttl": "CODE_EMAIL_CHANGE_TTL",
	"mail.from":              "MAIL_FROM",
	"mail.resend_api_key":    "RESEND_API_KEY",
	"mail.timeout":           "MAIL_TIMEOUT",
	"mail.rate_per_second":   "MAIL_RATE_PER_SECOND",
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	vip := viper.New()
	setDefaults(vip)
	for key, env := range envBindings {
		if err := vip.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	if cfg.Codes.HashSecret == "" {
		cfg.Codes.HashSecret = cfg.JWT.Secret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	return errors.Join(errs...)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("http_addr", ":4000")
	vip.SetDefault("db_max_open_conns", 25)
	vip.SetDefault("db_max_idle_conns", 10)
	vip.SetDefault("migrate_on_start", true)
	vip.SetDefault("log_level", "info")
	vip.SetDefault("cors_origin", "http://localhost:5173,http://localhost:5174")
	vip.SetDefault("bcrypt_cost", 12)
	vip.SetDefault("shutdown_grace", "10s")
	vip.SetDefault("jwt.expires_in", "168h")
	vip.SetDefault("codes.registration_ttl", "15m")
	vip.SetDefault("codes.login_ttl", "10m")
	vip.SetDefault("codes.reset_ttl", "15m")
	vip.SetDefault("codes.email_change_ttl", "15m")
	vip.SetDefault("mail.timeout", "15s")
	vip.SetDefault("mail.rate_per_second", 2)
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
