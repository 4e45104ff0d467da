package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "8000", cfg.App.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.False(t, cfg.OpenAI.Configured())
	assert.False(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_AppEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.env", "HTTP_PORT=9090\nREDIS_ENABLED=true\nREDIS_CACHE_TTL_SECONDS=5\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTTL)
}

func TestLoadConfig_INIFile(t *testing.T) {
	dir := t.TempDir()
	iniPath := writeFile(t, dir, "config.ini",
		"[Database]\nDATABASE_URL = postgres://u:p@db:5432/users\n\n[OpenAI]\nOPENAI_API_KEY = sk-test\n")
	t.Setenv("DEFAULT_CONFIG", iniPath)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/users", cfg.DB.URL)
	assert.Equal(t, "postgres://u:p@db:5432/users", cfg.DB.DSN())
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.True(t, cfg.OpenAI.Configured())
}

func TestLoadConfig_EnvOverridesINI(t *testing.T) {
	dir := t.TempDir()
	iniPath := writeFile(t, dir, "config.ini", "[OpenAI]\nOPENAI_API_KEY = from-file\n")
	t.Setenv("DEFAULT_CONFIG", iniPath)
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OpenAI.APIKey)
}

func TestLoadConfig_MissingINIFile(t *testing.T) {
	t.Setenv("DEFAULT_CONFIG", filepath.Join(t.TempDir(), "absent.ini"))

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", pg.DSN())

	lite := DatabaseConfig{Driver: DriverSQLite, Name: "users.db"}
	assert.Equal(t, "users.db", lite.DSN())
}

func validConfig() Config {
	return Config{
		DB:  DatabaseConfig{Driver: DriverPostgres, MaxOpenConns: 10, MaxIdleConns: 2},
		App: AppConfig{HTTPPort: "8000", ShutdownTimeout: time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "mysql" }, errMsg: "unsupported DB_DRIVER"},
		{name: "sqlite without target", mutate: func(c *Config) { c.DB.Driver = DriverSQLite }, errMsg: "sqlite requires"},
		{name: "idle above open", mutate: func(c *Config) { c.DB.MaxIdleConns = 20 }, errMsg: "DB_MAX_IDLE_CONNS"},
		{name: "no http port", mutate: func(c *Config) { c.App.HTTPPort = "" }, errMsg: "HTTP_PORT"},
		{name: "rate limit without redis", mutate: func(c *Config) {
			c.RateLimiter = RateLimiterConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 1}
		}, errMsg: "requires REDIS_ENABLED"},
		{name: "bad base url", mutate: func(c *Config) { c.OpenAI.BaseURL = "not a url" }, errMsg: "OPENAI_BASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
