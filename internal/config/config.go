package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret  = "change-me-jwt-secret"
	maxUploadAttempts = 3
)

type Config struct {
	AppEnv     string           `mapstructure:"app_env"`
	API        APIConfig        `mapstructure:"api"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
	Activity   ActivityConfig   `mapstructure:"activity"`
	Gallery    GalleryConfig    `mapstructure:"gallery"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Push       PushConfig       `mapstructure:"push"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects the local key-value backend. The sqlite DSN also hosts
// the attendance outbox.
type StoreConfig struct {
	Driver        string `mapstructure:"driver"`
	DSN           string `mapstructure:"dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ActivityConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type GalleryConfig struct {
	BackoffUnit time.Duration `mapstructure:"backoff_unit"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type AttendanceConfig struct {
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type PushConfig struct {
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// ServerConfig only applies to the devserver binary.
type ServerConfig struct {
	Addr      string        `mapstructure:"addr"`
	DSN       string        `mapstructure:"dsn"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	UploadDir string        `mapstructure:"upload_dir"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads defaults, then an optional config file, then UKONNECT_* env
// vars. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ukonnect")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("UKONNECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "ukonnect.db")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("activity.poll_interval", "10s")
	v.SetDefault("activity.refresh_interval", "1m")
	v.SetDefault("gallery.backoff_unit", "1s")
	v.SetDefault("gallery.max_attempts", 3)
	v.SetDefault("attendance.flush_interval", "30s")

	v.SetDefault("push.url", "")
	v.SetDefault("push.reconnect_delay", "5s")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.dsn", "devserver.db")
	v.SetDefault("server.jwt_secret", defaultJWTSecret)
	v.SetDefault("server.token_ttl", "24h")
	v.SetDefault("server.upload_dir", "uploads")

	v.SetDefault("metrics.addr", ":9090")
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}
	switch c.Store.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store.dsn must not be empty for the sqlite driver")
		}
	case "redis":
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return fmt.Errorf("store.redis_addr must not be empty for the redis driver")
		}
	default:
		return fmt.Errorf("store.driver must be one of: sqlite, redis")
	}
	if c.Activity.PollInterval <= 0 {
		return fmt.Errorf("activity.poll_interval must be > 0")
	}
	if c.Activity.RefreshInterval < 0 {
		return fmt.Errorf("activity.refresh_interval must be >= 0")
	}
	if c.Gallery.BackoffUnit < 0 {
		return fmt.Errorf("gallery.backoff_unit must be >= 0")
	}
	if c.Gallery.MaxAttempts < 1 || c.Gallery.MaxAttempts > maxUploadAttempts {
		return fmt.Errorf("gallery.max_attempts must be between 1 and %d", maxUploadAttempts)
	}
	if c.Attendance.FlushInterval <= 0 {
		return fmt.Errorf("attendance.flush_interval must be > 0")
	}
	if c.Push.ReconnectDelay <= 0 {
		return fmt.Errorf("push.reconnect_delay must be > 0")
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("server.token_ttl must be > 0")
	}

	if isProdLike(c.AppEnv) && isEmptyOrDefault(c.Server.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release server.jwt_secret must be set and not default")
	}

	return nil
}

// PushURL derives the websocket endpoint from the API base URL unless one is
// configured explicitly.
func (c *Config) PushURL() string {
	if c.Push.URL != "" {
		return c.Push.URL
	}
	base := c.API.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/push"
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
