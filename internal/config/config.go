package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	DB          DatabaseConfig
	App         AppConfig
	Redis       RedisConfig
	RateLimiter RateLimiterConfig
	OpenAI      OpenAIConfig
	Logger      LoggerConfig
}

// DatabaseConfig holds configuration for the database.
// URL, when set, takes precedence over the discrete connection fields.
type DatabaseConfig struct {
	Driver          string
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AppConfig holds configuration for the application servers
type AppConfig struct {
	Environment     string
	HTTPPort        string
	GRPCPort        string
	ShutdownTimeout time.Duration
}

// RedisConfig holds configuration for the list cache backend.
type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	CacheTTL    time.Duration
}

// RateLimiterConfig holds configuration for the token bucket limiter.
type RateLimiterConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// OpenAIConfig holds configuration for the joke proxy.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Configured reports whether an API key is available.
func (c OpenAIConfig) Configured() bool {
	return c.APIKey != ""
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// LoadConfig reads configuration from, in increasing precedence: defaults,
// the INI file named by DEFAULT_CONFIG, app.env under path, a .env file in
// the working directory and the process environment.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("DEFAULT_CONFIG"); file != "" {
		if err := loadINI(v, file); err != nil {
			return nil, err
		}
	}

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

// loadINI layers the sectioned defaults file over the built-in defaults.
// Only the keys the service understands are read.
func loadINI(v *viper.Viper, file string) error {
	f, err := ini.Load(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	for section, keys := range map[string][]string{
		"Database": {"DATABASE_URL"},
		"OpenAI":   {"OPENAI_API_KEY", "OPENAI_MODEL"},
	} {
		for _, key := range keys {
			if k := f.Section(section).Key(key); k.String() != "" {
				v.SetDefault(key, k.String())
			}
		}
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	config.DB.URL = v.GetString("DATABASE_URL")
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute

	config.App.Environment = v.GetString("APP_ENV")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.ShutdownTimeout = time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = time.Duration(v.GetInt("REDIS_CACHE_TTL_SECONDS")) * time.Second

	config.RateLimiter.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimiter.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimiter.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.OpenAI.APIKey = v.GetString("OPENAI_API_KEY")
	config.OpenAI.Model = v.GetString("OPENAI_MODEL")
	config.OpenAI.BaseURL = v.GetString("OPENAI_BASE_URL")
	config.OpenAI.Timeout = time.Duration(v.GetInt("OPENAI_TIMEOUT_SECONDS")) * time.Second

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rating_users")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	v.SetDefault("HTTP_PORT", "8000")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 60)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 50)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 100)

	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("OPENAI_TIMEOUT_SECONDS", 30)

	// Logger defaults
	if os.Getenv("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "rating-user-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.DB.URL == "" && c.DB.Name == "" {
			return errors.New("sqlite requires DATABASE_URL or DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	if c.DB.MaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return errors.New("DB_MAX_IDLE_CONNS must not exceed DB_MAX_OPEN_CONNS")
	}
	if c.App.HTTPPort == "" {
		return errors.New("HTTP_PORT is required")
	}
	if c.App.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		return errors.New("REDIS_CACHE_TTL_SECONDS must be positive when Redis is enabled")
	}
	if c.RateLimiter.Enabled {
		if !c.Redis.Enabled {
			return errors.New("rate limiting requires REDIS_ENABLED")
		}
		if c.RateLimiter.RequestsPerSecond <= 0 || c.RateLimiter.BurstCapacity < 1 {
			return errors.New("RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_BURST_CAPACITY must be positive")
		}
	}
	if c.OpenAI.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.OpenAI.BaseURL); err != nil {
			return fmt.Errorf("invalid OPENAI_BASE_URL: %w", err)
		}
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == DriverSQLite {
		return c.Name
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
