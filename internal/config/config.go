package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/utils"
)

// GetConfig loads the config file at path (JSON, or YAML for .yaml/.yml)
// and applies environment overrides. A missing file yields defaults.
func GetConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults + env only
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		App: App{
			Port:      8001,
			QuoteMode: domain.QuoteModeJitter,
		},
		Repository: Repository{
			Driver:      DriverSQLite,
			DBPath:      "./db.sqlite",
			DBSSLMode:   "disable",
			MaxConn:     10,
			MaxIdleConn: 5,
		},
		Cache: Cache{
			RedisPort:   6379,
			PoolSize:    10,
			IssuedTTL:   "10m",
			DialTimeout: "5s",
		},
		Events: Events{
			Topic: "orders",
		},
		Stream: Stream{
			Interval: "1s",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

func overrideWithEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &cfg.App.Port},
		{"DB_PORT", &cfg.Repository.DBPort},
		{"REDIS_PORT", &cfg.Cache.RedisPort},
		{"REDIS_DB", &cfg.Cache.RedisDB},
		{"REDIS_POOL_SIZE", &cfg.Cache.PoolSize},
		{"REDIS_MIN_IDLE_CONNS", &cfg.Cache.MinIdleConns},
	}
	for _, v := range ints {
		if err := envInt(v.key, v.dst); err != nil {
			return err
		}
	}

	if mode := os.Getenv("QUOTE_MODE"); mode != "" {
		cfg.App.QuoteMode = mode
	}

	// DB environment variables
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Repository.Driver = driver
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.Repository.DBPath = path
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Repository.DBHost = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Repository.DBUsername = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Repository.DBPassword = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Repository.DBName = name
	}
	if sslMode := os.Getenv("DB_SSL_MODE"); sslMode != "" {
		cfg.Repository.DBSSLMode = sslMode
	}

	// Redis environment variables
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Cache.RedisHost = redisHost
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Cache.RedisPassword = redisPassword
	}
	if ttl := os.Getenv("ISSUED_QUOTE_TTL"); ttl != "" {
		cfg.Cache.IssuedTTL = ttl
	}

	// Kafka environment variables
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Events.Brokers = splitList(brokers)
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		cfg.Events.Topic = topic
	}

	if interval := os.Getenv("STREAM_INTERVAL"); interval != "" {
		cfg.Stream.Interval = interval
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	return nil
}

// envInt sets *dst from the integer variable key when it is set.
func envInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	*dst = v
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.App.Port)
	}

	switch c.App.QuoteMode {
	case domain.QuoteModeJitter, domain.QuoteModePassthrough:
	default:
		return fmt.Errorf("unknown quote mode %q", c.App.QuoteMode)
	}

	switch c.Repository.Driver {
	case DriverSQLite:
		if c.Repository.DBPath == "" {
			return errors.New("sqlite driver requires db_path")
		}
	case DriverPostgres, DriverMySQL:
		if c.Repository.DBHost == "" || c.Repository.DBName == "" {
			return fmt.Errorf("%s driver requires db_host and db_name", c.Repository.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Repository.Driver)
	}

	if _, err := utils.ParsePeriod(c.Cache.IssuedTTL); err != nil {
		return fmt.Errorf("invalid issued_ttl: %w", err)
	}
	if _, err := utils.ParsePeriod(c.Cache.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	if _, err := utils.ParsePeriod(c.Stream.Interval); err != nil {
		return fmt.Errorf("invalid stream interval: %w", err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return nil
}

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	App        App        `json:"app" yaml:"app"`
	Repository Repository `json:"repository" yaml:"repository"`
	Cache      Cache      `json:"cache" yaml:"cache"`
	Events     Events     `json:"events" yaml:"events"`
	Stream     Stream     `json:"stream" yaml:"stream"`
	Logging    Logging    `json:"logging" yaml:"logging"`
}

type App struct {
	Port      int    `json:"port" yaml:"port"`
	QuoteMode string `json:"quote_mode" yaml:"quote_mode"`
}

type Repository struct {
	Driver      string `json:"driver" yaml:"driver"`
	DBPath      string `json:"db_path" yaml:"db_path"`
	DBHost      string `json:"db_host" yaml:"db_host"`
	DBPort      int    `json:"db_port" yaml:"db_port"`
	DBUsername  string `json:"db_username" yaml:"db_username"`
	DBPassword  string `json:"db_password" yaml:"db_password"`
	DBName      string `json:"db_name" yaml:"db_name"`
	DBSSLMode   string `json:"db_ssl_mode" yaml:"db_ssl_mode"`
	MaxConn     int    `json:"max_conn" yaml:"max_conn"`
	MaxIdleConn int    `json:"max_idle_conn" yaml:"max_idle_conn"`
}

// Cache configures the optional Redis log of issued quotes.
// An empty RedisHost disables it.
type Cache struct {
	RedisHost     string `json:"redis_host" yaml:"redis_host"`
	RedisPort     int    `json:"redis_port" yaml:"redis_port"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`
	PoolSize      int    `json:"pool_size" yaml:"pool_size"`
	MinIdleConns  int    `json:"min_idle_conns" yaml:"min_idle_conns"`
	DialTimeout   string `json:"dial_timeout" yaml:"dial_timeout"`
	IssuedTTL     string `json:"issued_ttl" yaml:"issued_ttl"`
}

// Events configures the optional Kafka order event publisher.
// No brokers disables it.
type Events struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

type Stream struct {
	Interval string `json:"interval" yaml:"interval"`
}

type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}
