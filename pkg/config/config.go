package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `env:", prefix=SERVER_"`
	Database  DatabaseConfig  `env:", prefix=DB_"`
	MySQL     MySQLConfig     `env:", prefix=MYSQL_"`
	SQLite    SQLiteConfig    `env:", prefix=SQLITE_"`
	Cache     CacheConfig     `env:", prefix=CACHE_"`
	Redis     RedisConfig     `env:", prefix=REDIS_"`
	NATS      NATSConfig      `env:", prefix=NATS_"`
	CORS      CORSConfig      `env:", prefix=CORS_"`
	RateLimit RateLimitConfig `env:", prefix=RATE_LIMIT_"`
	Logging   LoggingConfig   `env:", prefix=LOG_"`

	// Debug lowers the log level to debug and logs every SQL statement.
	Debug bool `env:"DEBUG, default=false"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `env:"HOST, default=0.0.0.0"`
	Port           int           `env:"PORT, default=8000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT, default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT, default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT, default=60s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=10s"`
}

// DatabaseConfig selects the relational engine.
type DatabaseConfig struct {
	Driver      string `env:"DRIVER, default=mysql"`
	AutoMigrate bool   `env:"AUTO_MIGRATE, default=false"`
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	Host            string        `env:"HOST, default=localhost"`
	Port            int           `env:"PORT, default=3306"`
	Database        string        `env:"DATABASE, default=tracking"`
	User            string        `env:"USER, default=tracking"`
	Password        string        `env:"PASSWORD"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS, default=25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME, default=5m"`
}

// SQLiteConfig holds the embedded engine configuration.
type SQLiteConfig struct {
	Path string `env:"PATH, default=./tracking.db"`
}

// CacheConfig selects the read cache in front of single-entity lookups.
type CacheConfig struct {
	Driver string        `env:"DRIVER, default=none"`
	TTL    time.Duration `env:"TTL, default=5m"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `env:"HOST, default=localhost"`
	Port         int           `env:"PORT, default=6379"`
	Password     string        `env:"PASSWORD"`
	DB           int           `env:"DB, default=0"`
	PoolSize     int           `env:"POOL_SIZE, default=10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS, default=2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT, default=5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=3s"`
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool          `env:"ENABLED, default=false"`
	URL            string        `env:"URL, default=nats://localhost:4222"`
	MaxReconnect   int           `env:"MAX_RECONNECT, default=10"`
	ReconnectWait  time.Duration `env:"RECONNECT_WAIT, default=2s"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT, default=2s"`
}

// CORSConfig holds cross-origin configuration for the browser client.
type CORSConfig struct {
	Enabled bool       `env:"ENABLED, default=true"`
	Origins OriginList `env:"ORIGINS, default=http://localhost:4200"`
	Methods []string   `env:"METHODS, default=GET,POST,PATCH,DELETE,OPTIONS"`
	Headers []string   `env:"HEADERS, default=Content-Type,Authorization,X-Request-ID"`
}

// RateLimitConfig holds the global request limiter settings.
type RateLimitConfig struct {
	Enabled  bool          `env:"ENABLED, default=false"`
	Requests int           `env:"REQUESTS, default=100"`
	Window   time.Duration `env:"WINDOW, default=1m"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LEVEL, default=info"`
	Format string `env:"FORMAT, default=json"`
	Output string `env:"OUTPUT, default=stdout"`
}

// OriginList accepts a JSON array, a comma separated list or a single URL.
type OriginList []string

// EnvDecode implements envconfig.Decoder.
func (o *OriginList) EnvDecode(val string) error {
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "[") {
		var list []string
		if err := json.Unmarshal([]byte(val), &list); err != nil {
			return fmt.Errorf("invalid origin list %q: %w", val, err)
		}
		*o = list
		return nil
	}
	var list []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	*o = list
	return nil
}

// Load loads configuration from environment variables using go-envconfig
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith loads configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	switch c.Database.Driver {
	case DriverMySQL:
		if c.MySQL.Host == "" {
			return fmt.Errorf("MySQL host is required")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path is required")
		}
	default:
		return fmt.Errorf("unknown database driver %q (use %s or %s)", c.Database.Driver, DriverMySQL, DriverSQLite)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("Redis host is required when CACHE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	// Writes made by other processes are only bounded by expiry.
	if c.Cache.Driver != CacheNone && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when CACHE_DRIVER=%s", c.Cache.Driver)
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("NATS URL is required when NATS is enabled")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requires positive requests and window")
	}
	return nil
}

// Addr returns the Redis host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetServerAddr returns server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
