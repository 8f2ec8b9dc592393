package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 目錄來源
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogHTTP     = "http"
	CatalogPostgres = "postgres"
)

// 工作階段儲存後端
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Image     ImageConfig     `mapstructure:"image"`
	LogLevel  string          `mapstructure:"log_level"`
	LogDir    string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig 食譜目錄來源設定
type CatalogConfig struct {
	Source      string        `mapstructure:"source"`
	Path        string        `mapstructure:"path"`
	URL         string        `mapstructure:"url"`
	DatabaseURL string        `mapstructure:"database_url"`
	Table       string        `mapstructure:"table"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// SessionConfig 瀏覽工作階段設定
type SessionConfig struct {
	Backend         string        `mapstructure:"backend"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	CookieName      string        `mapstructure:"cookie_name"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 食譜圖片設定
type ImageConfig struct {
	AssetsDir    string `mapstructure:"assets_dir"`
	MaxWidth     int    `mapstructure:"max_width"`
	DefaultWidth int    `mapstructure:"default_width"`
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 為選用
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用的無前綴環境變量
	bindings := map[string]string{
		"server.port":            "PORT",
		"catalog.source":         "CATALOG_SOURCE",
		"catalog.path":           "CATALOG_PATH",
		"catalog.url":            "CATALOG_URL",
		"catalog.database_url":   "DATABASE_URL",
		"cache.enabled":          "CACHE_ENABLED",
		"session.backend":        "SESSION_BACKEND",
		"session.redis_addr":     "REDIS_ADDR",
		"session.redis_password": "REDIS_PASSWORD",
		"rate_limit.enabled":     "RATE_LIMIT_ENABLED",
		"rate_limit.requests":    "RATE_LIMIT_REQUESTS",
		"rate_limit.window":      "RATE_LIMIT_WINDOW",
		"image.assets_dir":       "ASSETS_DIR",
		"log_level":              "LOG_LEVEL",
		"log_dir":                "LOG_DIR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// 選用的 config.yaml
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-browser")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "5s")

	// 目錄設定
	v.SetDefault("catalog.source", CatalogEmbedded)
	v.SetDefault("catalog.table", "recipes")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.retries", 2)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 工作階段設定
	v.SetDefault("session.backend", SessionMemory)
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.cleanup_interval", "5m")
	v.SetDefault("session.cookie_name", "recipe_session")
	v.SetDefault("session.redis_addr", "localhost:6379")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 300)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.assets_dir", "assets/img/recipes")
	v.SetDefault("image.max_width", 1200)
	v.SetDefault("image.default_width", 380)
	v.SetDefault("image.max_size_bytes", 10*1024*1024)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port is required")
	}

	// 驗證目錄來源
	switch config.Catalog.Source {
	case CatalogEmbedded:
	case CatalogFile:
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required for file source")
		}
	case CatalogHTTP:
		if config.Catalog.URL == "" {
			return fmt.Errorf("catalog url is required for http source")
		}
	case CatalogPostgres:
		if config.Catalog.DatabaseURL == "" {
			return fmt.Errorf("database url is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", config.Catalog.Source)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證工作階段設定
	switch config.Session.Backend {
	case SessionMemory, SessionRedis:
	default:
		return fmt.Errorf("unknown session backend %q", config.Session.Backend)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}
	if config.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	if config.Image.MaxWidth <= 0 || config.Image.DefaultWidth <= 0 {
		return fmt.Errorf("invalid image width")
	}

	return nil
}
