// Package config assembles service settings from the environment, an optional .env
// file and an optional TOML file. Environment variables win over the TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type DatabaseConfig struct {
	User         string
	Password     string
	Host         string
	Port         string
	Name         string
	MaxOpenConns int
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

type PracticeConfig struct {
	Lang         string
	WordlistPath string
	WordLimit    int
	MinLen       int
	MaxLen       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type ClickHouseConfig struct {
	Enabled       bool
	Host          string
	Port          int
	Database      string
	Username      string
	Password      string
	BatchSize     int
	FlushInterval time.Duration
}

type Config struct {
	Port       string
	Storage    string
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Practice   PracticeConfig
	RateLimit  RateLimitConfig
	ClickHouse ClickHouseConfig
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:    "8080",
		Storage: StoragePostgres,
		Database: DatabaseConfig{
			User:         "keystroke_user",
			Host:         "localhost",
			Port:         "5432",
			Name:         "keystroke_db",
			MaxOpenConns: 25,
		},
		Redis: RedisConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     "6379",
			CacheTTL: 30 * time.Minute,
		},
		Auth: AuthConfig{
			Issuer:   "keystroke-engine",
			TokenTTL: 24 * time.Hour,
		},
		Practice: PracticeConfig{
			Lang:      "en",
			WordLimit: 30,
			MinLen:    1,
			MaxLen:    20,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		ClickHouse: ClickHouseConfig{
			Host:          "localhost",
			Port:          9000,
			Database:      "default",
			Username:      "default",
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
		},
	}
}

// Load reads .env (if present), the TOML file named by CONFIG_FILE and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	file, err := LoadFile(getEnv("CONFIG_FILE", "keystroke.toml"))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyFile(file); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyFile(f FileConfig) error {
	setString(&c.Practice.Lang, f.Practice.Lang)
	setString(&c.Practice.WordlistPath, f.Practice.Wordlist)
	setInt(&c.Practice.WordLimit, f.Practice.WordLimit)
	setInt(&c.Practice.MinLen, f.Practice.MinLen)
	setInt(&c.Practice.MaxLen, f.Practice.MaxLen)
	setInt(&c.ClickHouse.BatchSize, f.Export.BatchSize)
	if f.Export.FlushInterval != nil {
		d, err := time.ParseDuration(*f.Export.FlushInterval)
		if err != nil {
			return fmt.Errorf("%w: export.flush-interval: %v", ErrInvalidConfig, err)
		}
		c.ClickHouse.FlushInterval = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.Storage = strings.ToLower(getEnv("STORAGE", c.Storage))

	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)

	c.Practice.Lang = getEnv("WORDLIST_LANG", c.Practice.Lang)
	c.Practice.WordlistPath = getEnv("WORDLIST_PATH", c.Practice.WordlistPath)

	c.ClickHouse.Host = getEnv("CLICKHOUSE_HOST", c.ClickHouse.Host)
	c.ClickHouse.Database = getEnv("CLICKHOUSE_DB_NAME", c.ClickHouse.Database)
	c.ClickHouse.Username = getEnv("CLICKHOUSE_USERNAME", c.ClickHouse.Username)
	c.ClickHouse.Password = getEnv("CLICKHOUSE_PASSWORD", c.ClickHouse.Password)

	var errs []error
	errs = append(errs,
		envInt("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns),
		envInt("REDIS_DB", &c.Redis.DB),
		envBool("REDIS_ENABLED", &c.Redis.Enabled),
		envDuration("CACHE_TTL", &c.Redis.CacheTTL),
		envDuration("JWT_TTL", &c.Auth.TokenTTL),
		envInt("WORD_LIMIT", &c.Practice.WordLimit),
		envInt("MIN_WORD_LEN", &c.Practice.MinLen),
		envInt("MAX_WORD_LEN", &c.Practice.MaxLen),
		envInt("RATE_LIMIT_REQUESTS", &c.RateLimit.Requests),
		envDuration("RATE_LIMIT_WINDOW", &c.RateLimit.Window),
		envBool("CLICKHOUSE_ENABLED", &c.ClickHouse.Enabled),
		envInt("CLICKHOUSE_NATIVE_PORT", &c.ClickHouse.Port),
		envInt("EXPORT_BATCH_SIZE", &c.ClickHouse.BatchSize),
		envDuration("EXPORT_FLUSH_INTERVAL", &c.ClickHouse.FlushInterval),
	)
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	switch {
	case c.Storage != StoragePostgres && c.Storage != StorageMemory:
		return fmt.Errorf("%w: STORAGE must be %q or %q", ErrInvalidConfig, StoragePostgres, StorageMemory)
	case c.Practice.WordLimit <= 0:
		return fmt.Errorf("%w: word limit must be positive", ErrInvalidConfig)
	case c.Practice.MinLen < 0 || c.Practice.MaxLen < 0 || c.Practice.MinLen > c.Practice.MaxLen:
		return fmt.Errorf("%w: word length bounds are inconsistent", ErrInvalidConfig)
	case c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0:
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateServe adds the checks that only matter when serving HTTP.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	*dst = d
	return nil
}
