package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
// Values come from defaults, then an optional wellhaven.yaml (or the file
// passed to Load), then environment variables. A .env file in the working
// directory is loaded into the environment first.
type Config struct {
	// Port is the HTTP port the edge router listens on.
	// Default: 8080
	Port int

	// DataDir is where the file and sqlite backends keep their data.
	// Default: ./data
	DataDir string

	// EnabledServices lists the HTTP services to mount.
	// Default: catalog,auth,cart,bookings
	EnabledServices []string

	// LogLevel controls verbosity (debug, info, warn, error).
	LogLevel string

	// StorageBackend selects the kv backend: file, memory, sqlite or redis.
	StorageBackend string

	// SQLitePath defaults to DATA_DIR/wellhaven.db.
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces every persisted key.
	KeyPrefix string

	// PasswordScheme is plain (stored verbatim) or bcrypt.
	PasswordScheme string

	// AuthLatency and BookingLatency delay login/signup and booking confirmation.
	AuthLatency    time.Duration
	BookingLatency time.Duration

	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	MetricsEnabled bool
}

// Services that can appear in ENABLED_SERVICES.
var knownServices = []string{"catalog", "auth", "cart", "bookings"}

// Load reads the configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("ENABLED_SERVICES", strings.Join(knownServices, ","))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("SQLITE_PATH", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KEY_PREFIX", "wellhaven")
	v.SetDefault("PASSWORD_SCHEME", "plain")
	v.SetDefault("AUTH_LATENCY", "0s")
	v.SetDefault("BOOKING_LATENCY", "0s")
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("METRICS_ENABLED", true)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("wellhaven")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Port:            v.GetInt("PORT"),
		DataDir:         v.GetString("DATA_DIR"),
		EnabledServices: splitList(v.GetStringSlice("ENABLED_SERVICES")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		StorageBackend:  strings.ToLower(v.GetString("STORAGE_BACKEND")),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		KeyPrefix:       v.GetString("KEY_PREFIX"),
		PasswordScheme:  strings.ToLower(v.GetString("PASSWORD_SCHEME")),
		AuthLatency:     v.GetDuration("AUTH_LATENCY"),
		BookingLatency:  v.GetDuration("BOOKING_LATENCY"),
		RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		MetricsEnabled:  v.GetBool("METRICS_ENABLED"),
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "wellhaven.db")
	}

	return cfg, nil
}

// splitList flattens entries that may themselves be comma-separated, so a YAML
// list and a "a,b" env value load the same way.
func splitList(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// IsServiceEnabled checks if a given service name is in the EnabledServices list.
func (c *Config) IsServiceEnabled(serviceName string) bool {
	for _, s := range c.EnabledServices {
		if s == serviceName {
			return true
		}
	}
	return false
}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port >= 65536 {
		return fmt.Errorf("invalid PORT: %d (must be 1-65535)", c.Port)
	}
	switch c.StorageBackend {
	case "file":
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR cannot be empty")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %q (must be file, memory, sqlite or redis)", c.StorageBackend)
	}
	switch c.PasswordScheme {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("invalid PASSWORD_SCHEME: %q (must be plain or bcrypt)", c.PasswordScheme)
	}
	if len(c.EnabledServices) == 0 {
		return fmt.Errorf("ENABLED_SERVICES cannot be empty")
	}
	for _, s := range c.EnabledServices {
		if !known(s) {
			return fmt.Errorf("unknown service in ENABLED_SERVICES: %q", s)
		}
	}
	if c.AuthLatency < 0 || c.BookingLatency < 0 {
		return fmt.Errorf("latencies cannot be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("invalid RATE_LIMIT_RPS: %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid RATE_LIMIT_BURST: %d (must be at least 1)", c.RateLimitBurst)
	}
	return nil
}

func known(service string) bool {
	for _, s := range knownServices {
		if s == service {
			return true
		}
	}
	return false
}
