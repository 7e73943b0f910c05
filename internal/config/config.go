// Package config loads ncdintake settings from .env and the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrNoAPIHost = errors.New("API_HOST or API_HOST_URL is required")

type Config struct {
	Env                string        `mapstructure:"ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	LogFile            string        `mapstructure:"LOG_FILE"`
	APIHost            string        `mapstructure:"API_HOST"`
	APIHostURL         string        `mapstructure:"API_HOST_URL"`
	SubmitTimeout      time.Duration `mapstructure:"SUBMIT_TIMEOUT"`
	SessionFile        string        `mapstructure:"SESSION_FILE"`
	AdminSecretKey     string        `mapstructure:"ADMIN_SECRET_KEY"`
	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`

	// Reference API server.
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "LOG_FILE", "API_HOST", "API_HOST_URL", "SUBMIT_TIMEOUT",
	"SESSION_FILE", "ADMIN_SECRET_KEY", "BREAKER_MAX_FAILURES",
	"PORT", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "JWT_SECRET",
}

// Load reads .env from envFile (".env" when empty) and the environment.
// The file is optional.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SUBMIT_TIMEOUT", "10s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive, got %s", c.SubmitTimeout)
	}
	if c.BreakerMaxFailures == 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must be at least 1")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	return nil
}

// ValidateServer checks the settings of the reference API server.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if !c.IsDev() && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters outside development")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// ResolveAPIHost returns the API base URL. API_HOST wins; otherwise the
// text resource at API_HOST_URL is fetched and its trimmed body is used.
func (c *Config) ResolveAPIHost(ctx context.Context, client *http.Client) (string, error) {
	if h := strings.TrimSpace(c.APIHost); h != "" {
		return h, nil
	}
	if strings.TrimSpace(c.APIHostURL) == "" {
		return "", ErrNoAPIHost
	}
	if client == nil {
		client = &http.Client{Timeout: c.SubmitTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIHostURL, nil)
	if err != nil {
		return "", fmt.Errorf("build host discovery request: %w", err)
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch api host: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch api host: unexpected status %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read api host: %w", err)
	}
	host := strings.TrimSpace(string(body))
	if host == "" {
		return "", fmt.Errorf("fetch api host: empty body from %s", c.APIHostURL)
	}
	return host, nil
}
